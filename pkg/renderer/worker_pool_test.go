package renderer

import (
	"context"
	"errors"
	"testing"

	"github.com/aliabbas299792/ray-tracer/pkg/core"
)

func newTileTasks(width, height, tileSize int, pixelStats [][]PixelStats, target int) []TileTask {
	tiles := NewTileGrid(width, height, tileSize, 42)
	tasks := make([]TileTask, len(tiles))
	for i, tile := range tiles {
		tasks[i] = TileTask{Tile: tile, PassNumber: 1, TargetSamples: target, TaskID: i, PixelStats: pixelStats}
	}
	return tasks
}

func TestWorkerPool_DefaultsToCPUCount(t *testing.T) {
	if NewWorkerPool(nil, 0).GetNumWorkers() < 1 {
		t.Error("Expected at least one worker")
	}
	if got := NewWorkerPool(nil, 3).GetNumWorkers(); got != 3 {
		t.Errorf("Expected 3 workers, got %d", got)
	}
}

func TestWorkerPool_RunCoversEveryTile(t *testing.T) {
	s := createSingleSphereScene(t, 32, 1, 1)
	tr := NewTileRenderer(NewRaytracer(s, &MockIntegrator{returnColor: core.NewVec3(0, 1, 0)}))
	pixelStats := newPixelStats(s.SamplingConfig.Width, s.SamplingConfig.Height)
	tasks := newTileTasks(s.SamplingConfig.Width, s.SamplingConfig.Height, 8, pixelStats, 2)

	results := make(chan TileResult, len(tasks))
	if err := NewWorkerPool(tr, 4).Run(context.Background(), tasks, results); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	seen := make(map[int]bool)
	for result := range results {
		if seen[result.TaskID] {
			t.Errorf("Task %d reported twice", result.TaskID)
		}
		seen[result.TaskID] = true
	}
	if len(seen) != len(tasks) {
		t.Errorf("Expected %d results, got %d", len(tasks), len(seen))
	}

	for y := range pixelStats {
		for x := range pixelStats[y] {
			if pixelStats[y][x].SampleCount != 2 {
				t.Fatalf("Pixel (%d,%d) has %d samples, expected 2", x, y, pixelStats[y][x].SampleCount)
			}
		}
	}
}

func TestWorkerPool_RunCancelled(t *testing.T) {
	s := createSingleSphereScene(t, 32, 1, 1)
	tr := NewTileRenderer(NewRaytracer(s, &MockIntegrator{}))
	pixelStats := newPixelStats(s.SamplingConfig.Width, s.SamplingConfig.Height)
	tasks := newTileTasks(s.SamplingConfig.Width, s.SamplingConfig.Height, 4, pixelStats, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unbuffered and never read, so workers can only finish through cancellation
	results := make(chan TileResult)
	err := NewWorkerPool(tr, 2).Run(ctx, tasks, results)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if _, ok := <-results; ok {
		t.Error("Expected results to be closed")
	}
}
