package usecase

import "sync"

// InflightGuard is the advisory per-job marker that rejects a second
// concurrent commit or invoice-creation call for the same job while one is
// outstanding. It is shared between the lifecycle and invoice usecases and
// released unconditionally so a failed call never wedges a job.
type InflightGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewInflightGuard() *InflightGuard {
	return &InflightGuard{active: make(map[string]struct{})}
}

// Acquire marks jobID busy, reporting false when it already is.
func (g *InflightGuard) Acquire(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.active[jobID]; busy {
		return false
	}
	g.active[jobID] = struct{}{}
	return true
}

// Release frees jobID. Safe to call for a job that is not marked.
func (g *InflightGuard) Release(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, jobID)
}
