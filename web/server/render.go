package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
	"github.com/aliabbas299792/ray-tracer/pkg/renderer"
	"github.com/aliabbas299792/ray-tracer/pkg/scene"
)

// TileUpdate represents a single tile update sent via SSE
type TileUpdate struct {
	TileX       int    `json:"tileX"`
	TileY       int    `json:"tileY"`
	TileSize    int    `json:"tileSize"`
	ImageData   string `json:"imageData"` // Base64 encoded PNG of just this tile
	PassNumber  int    `json:"passNumber"`
	TileNumber  int    `json:"tileNumber"` // 1-based position of the tile within its pass
	TotalTiles  int    `json:"totalTiles"`
	TotalPasses int    `json:"totalPasses"`
}

// SSEEvent is a single event handed to the stream writer
type SSEEvent struct {
	Type string // "tile", "progress", "error", "complete"
	Data string
}

// renderingPipeline contains the configured scene and raytracer
type renderingPipeline struct {
	scene     *scene.Scene
	raytracer *renderer.ProgressiveRaytracer
}

// handleRender streams a progressive render as Server-Sent Events.
// Each pass produces a "progress" event with the full image; "tile" events are sent
// when tiles=true. The stream ends with "complete" or "error".
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)

	ctx := r.Context()
	events := make(chan SSEEvent, 100)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		writeSSEEvents(ctx, w, events)
	}()
	defer func() {
		close(events)
		<-writerDone
	}()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		sendEvent(ctx, events, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	pipeline, err := s.setupRenderingPipeline(req)
	if err != nil {
		s.logger.Warnw("render setup failed", "scene", req.Scene, "error", err)
		sendEvent(ctx, events, "error", err.Error())
		return
	}

	s.logger.Infow("render started",
		"scene", req.Scene,
		"integrator", req.Integrator,
		"width", pipeline.scene.SamplingConfig.Width,
		"height", pipeline.scene.SamplingConfig.Height,
		"samples", req.SamplesPerPixel,
		"passes", req.MaxPasses)

	startTime := time.Now()
	options := renderer.RenderOptions{TileUpdates: r.URL.Query().Get("tiles") == "true"}
	passChan, tileChan, errChan := pipeline.raytracer.RenderProgressive(ctx, options)

	s.handleRenderingEvents(ctx, events, passChan, tileChan, errChan, pipeline.scene, req, startTime)
}

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSEEvents is the only goroutine writing to the response
func writeSSEEvents(ctx context.Context, w http.ResponseWriter, events <-chan SSEEvent) {
	flusher, _ := w.(http.Flusher)
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
				// Client disconnected during write; keep draining so senders never block
				for range events {
				}
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		case <-ctx.Done():
			for range events {
			}
			return
		}
	}
}

func sendEvent(ctx context.Context, events chan<- SSEEvent, eventType, data string) {
	select {
	case events <- SSEEvent{Type: eventType, Data: data}:
	case <-ctx.Done():
	}
}

// setupRenderingPipeline creates the scene, integrator and progressive raytracer for a request
func (s *Server) setupRenderingPipeline(req *RenderRequest) (*renderingPipeline, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, err
	}

	integ, err := integrator.New(req.Integrator, sceneObj.Background)
	if err != nil {
		return nil, err
	}

	config := renderer.DefaultProgressiveConfig()
	config.TileSize = DefaultTileSize
	config.MaxSamplesPerPixel = req.SamplesPerPixel
	config.MaxPasses = req.MaxPasses
	config.Seed = req.Seed

	raytracer, err := renderer.NewProgressiveRaytracer(sceneObj, config, integ, s.logger)
	if err != nil {
		return nil, err
	}
	return &renderingPipeline{scene: sceneObj, raytracer: raytracer}, nil
}

// handleRenderingEvents forwards pass and tile results until rendering stops
func (s *Server) handleRenderingEvents(ctx context.Context, events chan<- SSEEvent,
	passChan <-chan renderer.PassResult, tileChan <-chan renderer.TileCompletionResult, errChan <-chan error,
	sceneObj *scene.Scene, req *RenderRequest, startTime time.Time) {

	for passChan != nil || tileChan != nil {
		select {
		case result, ok := <-passChan:
			if !ok {
				passChan = nil
				continue
			}
			s.handlePassComplete(ctx, events, result, sceneObj, req, startTime)

		case tile, ok := <-tileChan:
			if !ok {
				tileChan = nil
				continue
			}
			s.handleTileUpdate(ctx, events, tile)

		case <-ctx.Done():
			s.logger.Infow("client disconnected, render cancelled", "scene", req.Scene)
			return
		}
	}

	if err := <-errChan; err != nil {
		s.logger.Warnw("render failed", "scene", req.Scene, "error", err)
		sendEvent(ctx, events, "error", fmt.Sprintf("Rendering failed: %v", err))
		return
	}

	s.logger.Infow("render completed", "scene", req.Scene, "duration", time.Since(startTime))
	sendEvent(ctx, events, "complete", "Rendering completed")
}

// handlePassComplete sends the full image of a finished pass
func (s *Server) handlePassComplete(ctx context.Context, events chan<- SSEEvent, result renderer.PassResult,
	sceneObj *scene.Scene, req *RenderRequest, startTime time.Time) {

	imageData, err := imageToBase64PNG(result.Frame.ToRGBA())
	if err != nil {
		s.logger.Errorw("failed to encode pass image", "pass", result.PassNumber, "error", err)
		return
	}

	update := ProgressUpdate{
		PassNumber:  result.PassNumber,
		TotalPasses: req.MaxPasses,
		Width:       result.Frame.Width,
		Height:      result.Frame.Height,
		ImageData:   imageData,
		Stats:       newStats(result.Stats, sceneObj.GetPrimitiveCount()),
		IsComplete:  result.IsLast,
		ElapsedMs:   time.Since(startTime).Milliseconds(),
	}

	data, err := json.Marshal(update)
	if err != nil {
		s.logger.Errorw("failed to marshal pass update", "error", err)
		return
	}
	sendEvent(ctx, events, "progress", string(data))
}

// handleTileUpdate sends the current state of a single finished tile
func (s *Server) handleTileUpdate(ctx context.Context, events chan<- SSEEvent, tile renderer.TileCompletionResult) {
	tileData, err := imageToBase64PNG(tile.TileImage)
	if err != nil {
		s.logger.Errorw("failed to encode tile image", "tileX", tile.TileX, "tileY", tile.TileY, "error", err)
		return
	}

	data, err := json.Marshal(TileUpdate{
		TileX:       tile.TileX,
		TileY:       tile.TileY,
		TileSize:    DefaultTileSize,
		ImageData:   tileData,
		PassNumber:  tile.PassNumber,
		TileNumber:  tile.TileNumber,
		TotalTiles:  tile.TotalTiles,
		TotalPasses: tile.TotalPasses,
	})
	if err != nil {
		s.logger.Errorw("failed to marshal tile update", "error", err)
		return
	}
	sendEvent(ctx, events, "tile", string(data))
}
