package aitools

import "sync"

// WarnOnce remembers which keys already produced a diagnostic. It is safe
// for concurrent use; two goroutines racing on the same new key may both see
// First return true.
type WarnOnce struct {
	seen sync.Map
}

// NewWarnOnce returns an empty set.
func NewWarnOnce() *WarnOnce {
	return &WarnOnce{}
}

// First records key and reports whether it had not been recorded before.
func (w *WarnOnce) First(key string) bool {
	_, loaded := w.seen.LoadOrStore(key, struct{}{})
	return !loaded
}

// Seen reports whether key was recorded.
func (w *WarnOnce) Seen(key string) bool {
	_, ok := w.seen.Load(key)
	return ok
}
