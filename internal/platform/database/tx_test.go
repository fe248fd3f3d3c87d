package database

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
)

func TestRunWithoutTransactionsIsConcurrencySafe(t *testing.T) {
	// A degraded runner never touches the pool; Run must carry no mutable
	// state of its own.
	r := &pgxTxRunner{supportsTx: false}

	var calls int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := r.Run(context.Background(), func(ctx context.Context) error {
				atomic.AddInt64(&calls, 1)
				return nil
			})
			if err != nil {
				t.Errorf("Run error: %v", err)
			}
		}()
	}
	wg.Wait()

	if calls != 16 {
		t.Fatalf("calls = %d; want 16", calls)
	}
	if r.Supported() {
		t.Fatal("Supported() = true; want false")
	}
}

func TestPassthroughRunnerRunsBare(t *testing.T) {
	ran := false
	err := PassthroughRunner{}.Run(context.Background(), func(ctx context.Context) error {
		ran = true
		if _, ok := ctx.Value(txKey{}).(interface{ Commit(context.Context) error }); ok {
			t.Error("passthrough attached a transaction to the context")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if !ran {
		t.Fatal("fn was not invoked")
	}
}
