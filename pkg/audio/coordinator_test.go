package audio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func clip(name string) Clip {
	return Clip{Name: name, PCM: make([]byte, 480), SampleRate: 24000}
}

func TestCoordinator_PlaysInSubmissionOrder(t *testing.T) {
	player := NewMockPlayer()
	player.Delay = 2 * time.Millisecond
	c := NewCoordinator(player)
	defer c.Close()

	for i := 0; i < 5; i++ {
		if err := c.Enqueue(clip(fmt.Sprintf("c%d", i)), 0); err != nil {
			t.Fatalf("Enqueue failed: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !c.WaitUntilIdle(ctx) {
		t.Fatal("expected WaitUntilIdle to return true")
	}

	got := player.Names()
	want := []string{"c0", "c1", "c2", "c3", "c4"}
	if len(got) != len(want) {
		t.Fatalf("played %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestCoordinator_NeverOverlaps(t *testing.T) {
	var active, peak atomic.Int32
	player := &MockPlayer{
		PlayFunc: func(ctx context.Context, c Clip) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			active.Add(-1)
			return nil
		},
	}
	c := NewCoordinator(player)
	defer c.Close()

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 5; i++ {
				c.Enqueue(clip(fmt.Sprintf("p%d-%d", p, i)), 0)
			}
		}(p)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if !c.WaitUntilIdle(ctx) {
		t.Fatal("expected queue to drain")
	}

	if peak.Load() != 1 {
		t.Errorf("expected at most one clip playing, peak was %d", peak.Load())
	}
	if n := len(player.Clips()); n != 20 {
		t.Errorf("expected 20 plays, got %d", n)
	}
}

func TestCoordinator_PerProducerOrder(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)
	defer c.Close()

	var wg sync.WaitGroup
	for p := 0; p < 3; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				c.Enqueue(clip(fmt.Sprintf("%d:%02d", p, i)), 0)
			}
		}(p)
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c.WaitUntilIdle(ctx)

	last := map[byte]string{}
	for _, name := range player.Names() {
		producer := name[0]
		if prev, ok := last[producer]; ok && prev > name {
			t.Errorf("producer %c out of order: %s after %s", producer, name, prev)
		}
		last[producer] = name
	}
}

func TestCoordinator_Delay(t *testing.T) {
	player := NewMockPlayer()
	c := NewCoordinator(player)
	defer c.Close()

	start := time.Now()
	c.Enqueue(clip("late"), 30*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if !c.WaitUntilIdle(ctx) {
		t.Fatal("expected drain")
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("clip played after %v, want >= 30ms", elapsed)
	}
}

func TestCoordinator_EnqueueDoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	player := &MockPlayer{
		PlayFunc: func(ctx context.Context, c Clip) error {
			<-release
			return nil
		},
	}
	c := NewCoordinator(player)
	defer c.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			c.Enqueue(clip("x"), 0)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Enqueue blocked while the worker was busy")
	}
	if c.Pending() != 100 {
		t.Errorf("expected 100 pending, got %d", c.Pending())
	}
	close(release)
}

func TestCoordinator_WaitUntilIdle(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		c := NewCoordinator(NewMockPlayer())
		defer c.Close()
		if !c.WaitUntilIdle(context.Background()) {
			t.Error("expected true on an empty queue")
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		block := make(chan struct{})
		defer close(block)
		player := &MockPlayer{PlayFunc: func(ctx context.Context, c Clip) error {
			select {
			case <-block:
			case <-ctx.Done():
			}
			return nil
		}}
		c := NewCoordinator(player)
		defer c.Close()

		c.Enqueue(clip("stuck"), 0)
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if c.WaitUntilIdle(ctx) {
			t.Error("expected false when the context ends first")
		}
	})

	t.Run("closed while waiting", func(t *testing.T) {
		player := &MockPlayer{PlayFunc: func(ctx context.Context, c Clip) error {
			<-ctx.Done()
			return ctx.Err()
		}}
		c := NewCoordinator(player)
		c.Enqueue(clip("stuck"), 0)

		result := make(chan bool, 1)
		go func() { result <- c.WaitUntilIdle(context.Background()) }()

		time.Sleep(10 * time.Millisecond)
		c.Close()

		select {
		case ok := <-result:
			if ok {
				t.Error("expected false after Close")
			}
		case <-time.After(time.Second):
			t.Fatal("WaitUntilIdle did not return after Close")
		}
	})

	t.Run("reusable after drain", func(t *testing.T) {
		player := NewMockPlayer()
		c := NewCoordinator(player)
		defer c.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for round := 0; round < 3; round++ {
			c.Enqueue(clip("r"), 0)
			if !c.WaitUntilIdle(ctx) {
				t.Fatalf("round %d: expected drain", round)
			}
		}
		if n := len(player.Clips()); n != 3 {
			t.Errorf("expected 3 plays, got %d", n)
		}
	})
}

func TestCoordinator_EnqueueAfterClose(t *testing.T) {
	c := NewCoordinator(NewMockPlayer())
	c.Close()
	if err := c.Enqueue(clip("x"), 0); err != ErrClosed {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close returned %v", err)
	}
}

type depthRecorder struct {
	mu     sync.Mutex
	depths []int
}

func (d *depthRecorder) QueueDepth(n int) {
	d.mu.Lock()
	d.depths = append(d.depths, n)
	d.mu.Unlock()
}

func TestCoordinator_DepthObserver(t *testing.T) {
	rec := &depthRecorder{}
	c := NewCoordinator(NewMockPlayer(), WithDepthObserver(rec))
	defer c.Close()

	c.Enqueue(clip("a"), 0)
	c.WaitUntilIdle(context.Background())

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.depths) < 2 {
		t.Fatalf("expected depth reports for enqueue and dequeue, got %v", rec.depths)
	}
	if rec.depths[len(rec.depths)-1] != 0 {
		t.Errorf("expected final depth 0, got %v", rec.depths)
	}
}
