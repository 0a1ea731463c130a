package definitions

import (
	"sync"

	"github.com/google/uuid"
)

// runGuard admits one detection per form at a time. Runs for a form share
// {work_dir}/{form_id}, so an overlapping run would overwrite the fetched
// workbook and wipe the other run's artifacts.
type runGuard struct {
	mu     sync.Mutex
	active map[uuid.UUID]struct{}
}

func newRunGuard() *runGuard {
	return &runGuard{active: make(map[uuid.UUID]struct{})}
}

// acquire claims formID. It returns false if a run already holds it;
// otherwise the caller must call release when the run ends.
func (g *runGuard) acquire(formID uuid.UUID) (release func(), ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[formID]; busy {
		return nil, false
	}
	g.active[formID] = struct{}{}

	return func() {
		g.mu.Lock()
		delete(g.active, formID)
		g.mu.Unlock()
	}, true
}
