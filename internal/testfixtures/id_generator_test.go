package testfixtures

import (
	"sync"
	"testing"
)

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("booking")

	first := gen.Next()
	second := gen.Next()

	if first != "booking-1" || second != "booking-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
	if gen.Issued() != 2 {
		t.Fatalf("expected 2 issued ids, got %d", gen.Issued())
	}
}

func TestIDGeneratorIsSafeForConcurrentUse(t *testing.T) {
	gen := NewIDGenerator("")
	next := gen.NextFunc()

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{})
		wg   sync.WaitGroup
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := next()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 16 {
		t.Fatalf("expected 16 distinct ids, got %d", len(seen))
	}
	if _, ok := seen["id-16"]; !ok {
		t.Fatalf("expected default prefix, got %v", seen)
	}
}
