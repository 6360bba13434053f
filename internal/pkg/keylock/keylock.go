// Package keylock serializes work per key while letting different keys run
// in parallel.
package keylock

import "sync"

type lock struct {
	mu   sync.Mutex
	refs int
}

// Locker is a set of mutexes created on demand and released when unused.
// The zero value is not usable; call New.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lock
}

func New() *Locker {
	return &Locker{locks: make(map[string]*lock)}
}

// Lock blocks until key is free and returns the function that releases it.
func (l *Locker) Lock(key string) (unlock func()) {
	l.mu.Lock()
	k, ok := l.locks[key]
	if !ok {
		k = &lock{}
		l.locks[key] = k
	}
	k.refs++
	l.mu.Unlock()

	k.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			k.mu.Unlock()
			l.mu.Lock()
			k.refs--
			if k.refs == 0 {
				delete(l.locks, key)
			}
			l.mu.Unlock()
		})
	}
}

// Len returns the number of keys currently held or awaited. Callers use it
// for debug logging; it also lets tests assert that released keys are freed.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
