package settings

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestLazyStoreLoadsOnce(t *testing.T) {
	var calls atomic.Int32
	want := &Store{values: map[string]string{}}
	lazy := &lazyStore{
		load: func() (*Store, error) {
			calls.Add(1)
			return want, nil
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := lazy.get()
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if got != want {
				t.Errorf("expected shared store instance")
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n != 1 {
		t.Fatalf("expected a single load, got %d", n)
	}
}

func TestLazyStoreCachesError(t *testing.T) {
	var calls int
	lazy := &lazyStore{
		load: func() (*Store, error) {
			calls++
			return nil, ErrDefaultsUnavailable
		},
	}

	for i := 0; i < 3; i++ {
		if _, err := lazy.get(); !errors.Is(err, ErrDefaultsUnavailable) {
			t.Fatalf("expected cached error, got %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected a single load, got %d", calls)
	}
}

func TestDefaultReturnsSameStore(t *testing.T) {
	t.Setenv(OverrideEnv, "")

	first, err := Default()
	if err != nil {
		t.Fatalf("Default returned error: %v", err)
	}
	if second := MustDefault(); second != first {
		t.Fatalf("expected the same process-wide store")
	}
}
