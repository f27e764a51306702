package translate

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
)

func fakeItems(n int) []TranslationItem {
	items := make([]TranslationItem, n)
	for i := range items {
		items[i] = TranslationItem{Index: i, Text: fmt.Sprintf("line %d", i)}
	}
	return items
}

func echoBatch(
	_ context.Context,
	items []TranslationItem,
) ([]TranslationResult, error) {
	results := make([]TranslationResult, len(items))
	for i, item := range items {
		results[i] = TranslationResult{
			Index: item.Index,
			Text:  "t:" + item.Text,
		}
	}
	return results, nil
}

func TestRunSequentialSplitsAndOrders(t *testing.T) {
	var calls int
	fn := func(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error) {
		calls++
		return echoBatch(ctx, items)
	}

	results, err := runSequential(context.Background(), fakeItems(7), 3, fn)
	if err != nil {
		t.Fatalf("runSequential error: %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 batch calls for 7 items at size 3, got %d", calls)
	}
	if len(results) != 7 {
		t.Fatalf("expected 7 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
	}
}

func TestRunSequentialEmptyInput(t *testing.T) {
	results, err := runSequential(
		context.Background(),
		nil,
		3,
		func(context.Context, []TranslationItem) ([]TranslationResult, error) {
			t.Fatal("batch func should not be called for empty input")
			return nil, nil
		},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestRunSequentialStopsOnBatchError(t *testing.T) {
	var calls int
	fn := func(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error) {
		calls++
		if calls == 2 {
			return nil, fmt.Errorf("rate limited")
		}
		return echoBatch(ctx, items)
	}

	_, err := runSequential(context.Background(), fakeItems(9), 3, fn)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "batch 1") {
		t.Errorf("error should name the failing batch: %v", err)
	}
	if calls != 2 {
		t.Errorf("expected no batches after the failure, got %d calls", calls)
	}
}

func TestRunConcurrentOrdersResults(t *testing.T) {
	var calls atomic.Int64
	fn := func(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error) {
		calls.Add(1)
		return echoBatch(ctx, items)
	}

	results, err := runConcurrent(context.Background(), fakeItems(20), 4, 3, fn)
	if err != nil {
		t.Fatalf("runConcurrent error: %v", err)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("expected 5 batch calls for 20 items at size 4, got %d", got)
	}
	if len(results) != 20 {
		t.Fatalf("expected 20 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Index != i {
			t.Errorf("result %d has index %d", i, r.Index)
		}
		if r.Text != fmt.Sprintf("t:line %d", i) {
			t.Errorf("result %d has text %q", i, r.Text)
		}
	}
}

func TestRunConcurrentSingleBatchSkipsPool(t *testing.T) {
	var calls int
	fn := func(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error) {
		calls++
		return echoBatch(ctx, items)
	}

	results, err := runConcurrent(context.Background(), fakeItems(3), 50, 3, fn)
	if err != nil {
		t.Fatalf("runConcurrent error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected a single direct call, got %d", calls)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestRunConcurrentPropagatesFirstError(t *testing.T) {
	var mu sync.Mutex
	var failed bool
	fn := func(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error) {
		mu.Lock()
		first := !failed
		failed = true
		mu.Unlock()
		if first {
			return nil, fmt.Errorf("boom")
		}
		return echoBatch(ctx, items)
	}

	_, err := runConcurrent(context.Background(), fakeItems(30), 5, 2, fn)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error should wrap the batch failure: %v", err)
	}
}

func TestSplitBatches(t *testing.T) {
	batches := splitBatches(fakeItems(10), 4)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 4 || len(batches[1]) != 4 || len(batches[2]) != 2 {
		t.Errorf(
			"unexpected batch sizes: %d, %d, %d",
			len(batches[0]), len(batches[1]), len(batches[2]),
		)
	}
}
