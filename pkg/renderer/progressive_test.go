package renderer

import (
	"context"
	"errors"
	"image"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
	"github.com/aliabbas299792/ray-tracer/pkg/integrator"
)

func TestProgressiveSampleCalculation(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.InitialSamples = 1
	config.MaxSamplesPerPixel = 50
	config.MaxPasses = 7

	pr := &ProgressiveRaytracer{
		config: config,
	}

	// Pass 1: 1 sample
	// Pass 2-6: (50-1)/6 = 8 samples per pass -> 9, 17, ...
	// Pass 7: 50 (final pass gets all remaining)
	expectedTotalSamples := []int{1, 9, 17, 25, 33, 41, 50}

	for pass := 1; pass <= 7; pass++ {
		totalSamples := pr.getSamplesForPass(pass)

		if totalSamples != expectedTotalSamples[pass-1] {
			t.Errorf("Pass %d: expected %d total samples, got %d",
				pass, expectedTotalSamples[pass-1], totalSamples)
		}
	}

	pr.config.MaxPasses = 1
	if got := pr.getSamplesForPass(1); got != 50 {
		t.Errorf("Single pass should take every sample, got %d", got)
	}
}

func TestProgressiveConfig_Validate(t *testing.T) {
	if err := DefaultProgressiveConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(*ProgressiveConfig)
	}{
		{"zero tile size", func(c *ProgressiveConfig) { c.TileSize = 0 }},
		{"zero initial samples", func(c *ProgressiveConfig) { c.InitialSamples = 0 }},
		{"max below initial", func(c *ProgressiveConfig) { c.InitialSamples = 10; c.MaxSamplesPerPixel = 5 }},
		{"zero passes", func(c *ProgressiveConfig) { c.MaxPasses = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultProgressiveConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidProgressiveConfig) {
				t.Errorf("Expected ErrInvalidProgressiveConfig, got %v", err)
			}
		})
	}
}

func TestNewTileGrid(t *testing.T) {
	// 400x225 image with 64x64 tiles
	width, height, tileSize := 400, 225, 64
	tiles := NewTileGrid(width, height, tileSize, 42)

	expectedTilesX := (width + tileSize - 1) / tileSize   // 7 tiles
	expectedTilesY := (height + tileSize - 1) / tileSize  // 4 tiles
	expectedTotalTiles := expectedTilesX * expectedTilesY // 28 tiles

	if len(tiles) != expectedTotalTiles {
		t.Errorf("Expected %d tiles, got %d", expectedTotalTiles, len(tiles))
	}

	// Tiles cover the entire image without gaps or overlaps
	covered := make([][]bool, height)
	for y := range covered {
		covered[y] = make([]bool, width)
	}

	for _, tile := range tiles {
		for y := tile.Bounds.Min.Y; y < tile.Bounds.Max.Y; y++ {
			for x := tile.Bounds.Min.X; x < tile.Bounds.Max.X; x++ {
				if x >= width || y >= height {
					t.Errorf("Tile %d extends beyond image bounds at (%d,%d)", tile.ID, x, y)
					continue
				}
				if covered[y][x] {
					t.Errorf("Pixel (%d,%d) is covered by multiple tiles", x, y)
				}
				covered[y][x] = true
			}
		}
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !covered[y][x] {
				t.Errorf("Pixel (%d,%d) is not covered by any tile", x, y)
			}
		}
	}
}

func TestTileDeterministicRandom(t *testing.T) {
	bounds := image.Rect(0, 0, 64, 64)
	tile1 := NewTile(42, bounds, 7)
	tile2 := NewTile(42, bounds, 7)

	val1 := tile1.Sampler.Get1D()
	val2 := tile2.Sampler.Get1D()
	if val1 != val2 {
		t.Errorf("Tiles with same ID and seed should produce same random values: %f != %f", val1, val2)
	}

	tile3 := NewTile(43, bounds, 7)
	if val1 == tile3.Sampler.Get1D() {
		t.Error("Tiles with different IDs should produce different random values")
	}
}

func TestProgressiveRaytracer_RenderProgressive(t *testing.T) {
	s := createSingleSphereScene(t, 40, 6, 4)
	config := ProgressiveConfig{
		TileSize:           16,
		InitialSamples:     1,
		MaxSamplesPerPixel: 6,
		MaxPasses:          3,
		NumWorkers:         3,
		Seed:               42,
	}

	pr, err := NewProgressiveRaytracer(s, config, integrator.NewPathTracingIntegrator(s.Background), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatalf("NewProgressiveRaytracer() error: %v", err)
	}

	passChan, tileChan, errChan := pr.RenderProgressive(context.Background(), RenderOptions{TileUpdates: true})

	tileCount := 0
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range tileChan {
			tileCount++
		}
	}()

	var passes []PassResult
	for result := range passChan {
		passes = append(passes, result)
	}
	<-done
	if err := <-errChan; err != nil {
		t.Fatalf("Render error: %v", err)
	}

	if len(passes) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(passes))
	}
	expectedSamples := []float64{1, 3, 6}
	for i, pass := range passes {
		if pass.PassNumber != i+1 {
			t.Errorf("Pass %d reported number %d", i+1, pass.PassNumber)
		}
		if pass.Stats.AverageSamples != expectedSamples[i] {
			t.Errorf("Pass %d: expected %f samples per pixel, got %f", i+1, expectedSamples[i], pass.Stats.AverageSamples)
		}
		if pass.IsLast != (i == 2) {
			t.Errorf("Pass %d: unexpected IsLast %t", i+1, pass.IsLast)
		}
	}

	// 40x22 image in 16px tiles: 3x2 tiles per pass
	if tileCount != 3*6 {
		t.Errorf("Expected 18 tile updates, got %d", tileCount)
	}
}

func TestProgressiveRaytracer_WorkerCountDoesNotChangeImage(t *testing.T) {
	render := func(workers int) *Frame {
		s := createSingleSphereScene(t, 32, 4, 5)
		config := ProgressiveConfig{
			TileSize:           8,
			InitialSamples:     1,
			MaxSamplesPerPixel: 4,
			MaxPasses:          2,
			NumWorkers:         workers,
			Seed:               11,
		}
		pr, err := NewProgressiveRaytracer(s, config, integrator.NewPathTracingIntegrator(s.Background), zaptest.NewLogger(t).Sugar())
		if err != nil {
			t.Fatal(err)
		}
		frame, _, err := pr.Render(context.Background(), nil)
		if err != nil {
			t.Fatal(err)
		}
		return frame
	}

	single := render(1)
	parallel := render(4)
	for i := range single.Pixels {
		if !single.Pixels[i].Equals(parallel.Pixels[i]) {
			t.Fatalf("Pixel %d differs between 1 and 4 workers: %v vs %v", i, single.Pixels[i], parallel.Pixels[i])
		}
	}
}

func TestProgressiveRaytracer_Cancelled(t *testing.T) {
	s := createSingleSphereScene(t, 32, 8, 5)
	pr, err := NewProgressiveRaytracer(s, DefaultProgressiveConfig(), integrator.NewPathTracingIntegrator(s.Background), nil)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err = pr.Render(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestProgressiveRaytracer_Render(t *testing.T) {
	s := createSingleSphereScene(t, 20, 2, 1)
	pr, err := NewProgressiveRaytracer(s, ProgressiveConfig{
		TileSize:       8,
		InitialSamples: 1,
		MaxPasses:      2,
		Seed:           1,
	}, integrator.NewPathTracingIntegrator(s.Background), zaptest.NewLogger(t).Sugar())
	if err != nil {
		t.Fatal(err)
	}

	var passNumbers []int
	frame, stats, err := pr.Render(context.Background(), func(result PassResult) {
		passNumbers = append(passNumbers, result.PassNumber)
	})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	if len(passNumbers) != 2 {
		t.Errorf("Expected 2 pass callbacks, got %v", passNumbers)
	}
	if stats.AverageSamples != 2 {
		t.Errorf("MaxSamplesPerPixel should default to the scene's 2 samples, got %f", stats.AverageSamples)
	}
	// Depth 1 leaves the sphere black in the middle of the frame
	if !frame.At(frame.Width/2, frame.Height/2).Equals(core.Vec3{}) {
		t.Errorf("Expected black center pixel, got %v", frame.At(frame.Width/2, frame.Height/2))
	}
}
