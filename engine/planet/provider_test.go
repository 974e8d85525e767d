// Copyright 2024 Gustavo C. Viegas. All rights reserved.

package planet

import (
	"errors"
	"testing"
	"time"
)

// TestQueueReceiveAll drives 1000 distinct requests through a live
// worker pool and checks that ReceiveAll eventually yields exactly
// 1000 results, one per requestId.
func TestQueueReceiveAll(t *testing.T) {
	c := DefaultConfig()
	c.VerticesPerPatch = 5
	c.NormalGridScale = 2
	p := NewProvider(&c)
	defer p.Close()

	const n = 1000
	want := make(map[uint64]bool, n)
	for i := 0; i < n; i++ {
		l := PatchLocation{Face: Front, Offset: [2]float32{float32(i) * 1e-4, 0}, Size: 1e-5, LODLevel: 1}
		_, id, err := p.Queue(l, 1)
		if err != nil {
			t.Fatalf("Queue %d: %v", i, err)
		}
		want[id] = true
	}

	got := map[uint64]bool{}
	deadline := time.Now().Add(5 * time.Second)
	for len(got) < n && time.Now().Before(deadline) {
		p.ReceiveAll(func(id uint64, _ PatchGeometry) {
			got[id] = true
		})
		if len(got) < n {
			time.Sleep(time.Millisecond)
		}
	}

	if len(got) != n {
		t.Fatalf("ReceiveAll: result count:\nhave %d\nwant %d", len(got), n)
	}
	for id := range want {
		if !got[id] {
			t.Fatalf("ReceiveAll: missing result for requestId %d", id)
		}
	}
}

// TestPopOrdersByPriority checks that pop always returns the
// highest-priority live request, per the residency controller's
// reliance on priority ordering.
func TestPopOrdersByPriority(t *testing.T) {
	c := DefaultConfig()
	c.Workers = 0
	p := NewProvider(&c)
	defer p.Close()

	_, idLow, _ := p.Queue(RootLocation(Front), 1)
	_, idHigh, _ := p.Queue(RootLocation(Back), 9)
	_, idMid, _ := p.Queue(RootLocation(Top), 5)

	want := []uint64{idHigh, idMid, idLow}
	for i, w := range want {
		req, ok := p.pop()
		if !ok {
			t.Fatalf("pop %d: have closed, want a request", i)
		}
		if req.id != w {
			t.Fatalf("pop %d: requestId:\nhave %d\nwant %d", i, req.id, w)
		}
	}
}

// TestPopDropsCancelled checks that a request whose priority is set
// to 0 before it is popped is dropped rather than delivered.
func TestPopDropsCancelled(t *testing.T) {
	c := DefaultConfig()
	c.Workers = 0
	p := NewProvider(&c)
	defer p.Close()

	_, liveID, _ := p.Queue(RootLocation(Front), 5)
	cancelPr, _, _ := p.Queue(RootLocation(Back), 3)
	cancelPr.Set(0)

	req, ok := p.pop()
	if !ok {
		t.Fatal("pop: have closed, want a request")
	}
	if req.id != liveID {
		t.Fatalf("pop after cancellation: requestId:\nhave %d\nwant %d", req.id, liveID)
	}
	if len(p.queue) != 0 {
		t.Fatalf("pop: queue should be drained of the cancelled entry:\nhave len %d\nwant 0", len(p.queue))
	}
}

func TestQueueAfterClosePoisons(t *testing.T) {
	c := DefaultConfig()
	p := NewProvider(&c)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, _, err := p.Queue(RootLocation(Front), 1); !errors.Is(err, ErrProviderPoisoned) {
		t.Fatalf("Queue after Close:\nhave %v\nwant %v", err, ErrProviderPoisoned)
	}
}

func TestQueueAfterManualPoisonFails(t *testing.T) {
	c := DefaultConfig()
	c.Workers = 0
	p := NewProvider(&c)
	defer p.Close()

	p.poisoned.Store(true)
	if _, _, err := p.Queue(RootLocation(Front), 1); !errors.Is(err, ErrProviderPoisoned) {
		t.Fatalf("Queue after poisoning:\nhave %v\nwant %v", err, ErrProviderPoisoned)
	}
}

// TestComputeMemoises checks that repeated computation of the same
// location returns geometry equal to the first call, exercising the
// provider's LRU cache.
func TestComputeMemoises(t *testing.T) {
	c := DefaultConfig()
	c.Workers = 0
	c.VerticesPerPatch = 5
	c.NormalGridScale = 2
	p := NewProvider(&c)
	defer p.Close()

	l := RootLocation(Front)
	a := p.compute(l)
	b := p.compute(l)
	if len(a.Positions) != len(b.Positions) {
		t.Fatalf("compute: memoised result length mismatch: %d vs %d", len(a.Positions), len(b.Positions))
	}
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatalf("compute: memoised Positions[%d]:\nhave %v\nwant %v", i, b.Positions[i], a.Positions[i])
		}
	}
}
