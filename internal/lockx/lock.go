// Package lockx provides named mutexes so work on the same key is
// serialized while work on different keys proceeds in parallel.
package lockx

import "sync"

// KeyedMutex hands out one mutex per key. An entry lives until Forget
// drops it, so the map grows with the number of live accounts.
type KeyedMutex struct {
	locks sync.Map
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{}
}

// Lock acquires the mutex for key and returns its unlock function.
func (m *KeyedMutex) Lock(key string) func() {
	l, _ := m.locks.LoadOrStore(key, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Forget drops the mutex for key. Callers use it after the keyed resource
// is gone for good, e.g. a deleted account. A goroutine still holding or
// waiting on the dropped mutex does not exclude one that locks the fresh
// mutex handed out afterwards, so Forget is only safe once nothing can
// recreate the resource.
func (m *KeyedMutex) Forget(key string) {
	m.locks.Delete(key)
}
