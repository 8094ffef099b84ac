package settings

import (
	"fmt"
	"sync"
)

// lazyStore loads a Store on first use and caches the store or the error.
type lazyStore struct {
	once  sync.Once
	load  func() (*Store, error)
	store *Store
	err   error
}

func (l *lazyStore) get() (*Store, error) {
	l.once.Do(func() {
		l.store, l.err = l.load()
	})
	return l.store, l.err
}

var process = &lazyStore{
	load: func() (*Store, error) { return Load() },
}

// Default returns the process-wide Store, loading it from the bundled
// defaults and APP_CONFIG on the first call. Concurrent first callers share a
// single load; a load error is returned to every caller.
func Default() (*Store, error) {
	return process.get()
}

// MustDefault is Default for callers that cannot proceed without settings.
func MustDefault() *Store {
	store, err := Default()
	if err != nil {
		panic(fmt.Sprintf("settings: %v", err))
	}
	return store
}
