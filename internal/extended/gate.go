package extended

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"solana-art-lab/internal/domain"
)

// mount is the state of one gate for one identifier.
type mount struct {
	id      string
	started bool
	done    chan struct{}
	result  *domain.ExtendedMetadata
	ok      bool
}

func newMount(id string) *mount {
	return &mount{id: id, done: make(chan struct{})}
}

// Gate delivers extended metadata for one view. The load starts the first
// time the view is visible and its record URI is known, and delivers exactly
// once per identifier.
type Gate struct {
	loader *Loader
	anchor string

	mu      sync.Mutex
	visible bool
	current *mount
}

// Mount creates a gate for id. The gate starts hidden.
func (l *Loader) Mount(id string) *Gate {
	return &Gate{
		loader:  l,
		anchor:  "view-" + uuid.NewString(),
		current: newMount(id),
	}
}

// Anchor returns the opaque token a view attaches to its visibility observer.
func (g *Gate) Anchor() string {
	return g.anchor
}

// SetVisible updates visibility and re-evaluates the gate. Hiding a view
// does not cancel a load already started.
func (g *Gate) SetVisible(visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.visible = visible
	g.evaluate()
}

// SetIdentifier switches the gate to id. A different id starts a new mount
// that may load again; the previous mount's delivery still completes.
func (g *Gate) SetIdentifier(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if id == g.current.id {
		return
	}
	g.current = newMount(id)
	g.evaluate()
}

// Refresh re-evaluates the gate, for example after new records arrive.
func (g *Gate) Refresh() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.evaluate()
}

// Identifier returns the current identifier.
func (g *Gate) Identifier() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current.id
}

// Started reports whether the current mount has begun loading.
func (g *Gate) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current.started
}

// Done is closed when the current mount delivers.
func (g *Gate) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current.done
}

// Produced reports whether the current mount has delivered, with or without
// a result.
func (g *Gate) Produced() bool {
	select {
	case <-g.Done():
		return true
	default:
		return false
	}
}

// Result returns the delivered metadata. ok is false before delivery and
// when the delivery carried no result.
func (g *Gate) Result() (*domain.ExtendedMetadata, bool) {
	g.mu.Lock()
	m := g.current
	g.mu.Unlock()

	select {
	case <-m.done:
		return m.result, m.ok
	default:
		return nil, false
	}
}

// evaluate must be called with g.mu held.
func (g *Gate) evaluate() {
	m := g.current
	if !g.visible || m.started || m.id == "" {
		return
	}

	l := g.loader
	uri, ok, err := l.uris.ContentURI(l.ctx, m.id)
	if err != nil {
		l.logger.Warn("resolve content uri", zap.String("id", m.id), zap.Error(err))
		return
	}
	if !ok {
		return
	}

	m.started = true
	go func() {
		result, ok := l.load(uri)
		m.result, m.ok = result, ok
		l.metrics.RecordExtendedDelivery(ok)
		close(m.done)
	}()
}
