package parallel

import (
	"sync/atomic"
	"testing"
)

func TestForCoversAllIndices(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}

	n := 10000
	var seen atomic.Int64
	For(n, func(i int) {
		seen.Add(int64(i))
	}, cfg)

	want := int64(n) * int64(n-1) / 2
	if got := seen.Load(); got != want {
		t.Errorf("sum of indices = %d, want %d", got, want)
	}
}

func TestForSequentialFallback(t *testing.T) {
	// Below the chunk-size threshold everything runs on the caller's
	// goroutine, so plain writes are safe.
	cfg := Config{Enabled: true, NumWorkers: 4, MinChunkSize: 100}

	visited := make([]bool, 50)
	For(len(visited), func(i int) {
		visited[i] = true
	}, cfg)

	for i, v := range visited {
		if !v {
			t.Errorf("index %d not visited", i)
		}
	}
}

func TestForChunksPartition(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3, MinChunkSize: 1}

	n := 1000
	var count atomic.Int64
	ForChunks(n, func(start, end int) {
		if start < 0 || end > n || start >= end {
			t.Errorf("bad chunk [%d, %d)", start, end)
		}
		count.Add(int64(end - start))
	}, cfg)

	if got := count.Load(); got != int64(n) {
		t.Errorf("chunks cover %d items, want %d", got, n)
	}
}

func TestForChunksZero(t *testing.T) {
	called := false
	ForChunks(0, func(start, end int) {
		called = true
	}, DefaultConfig())
	if called {
		t.Error("f should not run for n = 0")
	}
}

func TestSequentialConfig(t *testing.T) {
	cfg := Sequential()
	if cfg.Enabled {
		t.Error("Sequential() should disable parallelism")
	}

	order := make([]int, 0, 10)
	For(10, func(i int) {
		order = append(order, i)
	}, cfg)
	for i, v := range order {
		if v != i {
			t.Errorf("sequential order broken at %d: got %d", i, v)
		}
	}
}
