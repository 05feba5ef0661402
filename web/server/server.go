package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/aliabbas299792/ray-tracer/pkg/renderer"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

// Parameter limits for web renders
const (
	DefaultWidth    = 400
	MinWidth        = 16
	MaxWidth        = 2000
	DefaultSamples  = 50
	MaxSamples      = 10000
	DefaultDepth    = 50
	MaxDepth        = 200
	DefaultPasses   = 7
	MaxPasses       = 1000
	DefaultTileSize = 64
)

// ErrInvalidParameter is returned for malformed or out-of-range query parameters
var ErrInvalidParameter = errors.New("invalid parameter")

// Server handles web requests for the progressive raytracer
type Server struct {
	port      int
	scenesDir string
	logger    *zap.SugaredLogger
}

// NewServer creates a new web server. Scene files are discovered in scenesDir.
func NewServer(port int, scenesDir string, logger *zap.SugaredLogger) *Server {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Server{port: port, scenesDir: scenesDir, logger: logger}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string `json:"scene"`           // Scene id, built-in or "file:<path>"
	Integrator      string `json:"integrator"`      // "path" or "normals"
	Width           int    `json:"width"`           // Image width, height follows the scene's aspect ratio
	SamplesPerPixel int    `json:"samplesPerPixel"` // Samples per pixel after the last pass
	MaxDepth        int    `json:"maxDepth"`        // Maximum ray bounce depth
	MaxPasses       int    `json:"maxPasses"`       // Maximum number of passes
	Seed            int64  `json:"seed"`
}

// ProgressUpdate represents a single progressive update sent via SSE
type ProgressUpdate struct {
	PassNumber  int    `json:"passNumber"`
	TotalPasses int    `json:"totalPasses"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG
	Stats       Stats  `json:"stats"`
	IsComplete  bool   `json:"isComplete"`
	ElapsedMs   int64  `json:"elapsedMs"`
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
	PrimitiveCount int     `json:"primitiveCount"`
}

func newStats(s renderer.RenderStats, primitives int) Stats {
	return Stats{
		TotalPixels:    s.TotalPixels,
		TotalSamples:   int64(s.TotalSamples),
		AverageSamples: s.AverageSamples,
		MaxSamples:     s.MaxSamples,
		MinSamples:     s.MinSamples,
		MaxSamplesUsed: s.MaxSamplesUsed,
		PrimitiveCount: primitives,
	}
}

// Handler returns the API routes wrapped in CORS middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return cors.Default().Handler(mux)
}

// Start starts the web server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Infow("starting web server", "address", "http://localhost"+addr, "scenesDir", s.scenesDir)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	response, err := scene.ListAllScenes(s.scenesDir, s.logger)
	if err != nil {
		s.logger.Errorw("failed to list scenes", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleSceneConfig returns the default render settings and parameter limits
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	config := map[string]interface{}{
		"defaults": map[string]interface{}{
			"scene":           "default",
			"integrator":      "path",
			"width":           DefaultWidth,
			"samplesPerPixel": DefaultSamples,
			"maxDepth":        DefaultDepth,
			"maxPasses":       DefaultPasses,
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": MinWidth, "max": MaxWidth},
			"samplesPerPixel": map[string]int{"min": 1, "max": MaxSamples},
			"maxDepth":        map[string]int{"min": 1, "max": MaxDepth},
			"maxPasses":       map[string]int{"min": 1, "max": MaxPasses},
		},
		"integrators": []string{"path", "normals"},
	}
	writeJSON(w, http.StatusOK, config)
}

// parseCommonSceneParams reads the scene and image width shared by render and inspect requests
func (s *Server) parseCommonSceneParams(values url.Values, req *RenderRequest) error {
	req.Scene = values.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	req.Width, err = parseIntParam(values, "width", DefaultWidth, MinWidth, MaxWidth)
	return err
}

// parseRenderRequest parses and validates the render query parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	values := r.URL.Query()
	req := &RenderRequest{}

	if err := s.parseCommonSceneParams(values, req); err != nil {
		return nil, err
	}

	req.Integrator = values.Get("integrator")
	if req.Integrator == "" {
		req.Integrator = "path"
	}

	var err error
	if req.SamplesPerPixel, err = parseIntParam(values, "samples", DefaultSamples, 1, MaxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(values, "depth", DefaultDepth, 1, MaxDepth); err != nil {
		return nil, err
	}
	if req.MaxPasses, err = parseIntParam(values, "passes", DefaultPasses, 1, MaxPasses); err != nil {
		return nil, err
	}
	seed, err := parseIntParam(values, "seed", int(renderer.DefaultProgressiveConfig().Seed), 0, 1<<31-1)
	if err != nil {
		return nil, err
	}
	req.Seed = int64(seed)

	if req.Width > 800 && req.SamplesPerPixel > 100 {
		s.logger.Warnw("large image with high samples may render slowly",
			"width", req.Width, "samples", req.SamplesPerPixel)
	}

	return req, nil
}

// createScene builds the requested scene. Only built-in ids and files discovered in the
// scenes directory are accepted, so clients cannot load arbitrary paths.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	name := req.Scene
	if !slices.Contains(scene.Names(), name) {
		if !strings.HasPrefix(name, "file:") {
			return nil, errors.Wrapf(scene.ErrUnknownScene, "%q", name)
		}
		files, err := scene.ListSceneFiles(s.scenesDir, s.logger)
		if err != nil {
			return nil, err
		}
		if !slices.ContainsFunc(files, func(info scene.SceneInfo) bool { return info.ID == name }) {
			return nil, errors.Wrapf(scene.ErrUnknownScene, "%q", name)
		}
	}

	sceneObj, err := scene.Create(name)
	if err != nil {
		return nil, err
	}
	if err := sceneObj.Resample(scene.SamplingConfig{
		Width:           req.Width,
		SamplesPerPixel: req.SamplesPerPixel,
		MaxDepth:        req.MaxDepth,
	}); err != nil {
		return nil, err
	}
	return sceneObj, nil
}

// parseIntParam parses an integer query parameter with bounds checking
func parseIntParam(values url.Values, key string, defaultValue, minVal, maxVal int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidParameter, "%s: %q is not an integer", key, raw)
	}
	if val < minVal || val > maxVal {
		return 0, errors.Wrapf(ErrInvalidParameter, "%s must be between %d and %d, got %d", key, minVal, maxVal, val)
	}
	return val, nil
}

// imageToBase64PNG converts an image to base64-encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", errors.Wrap(err, "encoding png")
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}
