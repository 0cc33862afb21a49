package host

import (
	"context"
	"fmt"
	"sync"

	"github.com/semmidev/kustos/internal/domain"
)

// SetupFunc initializes one component. It runs at most once per domain.
type SetupFunc func(ctx context.Context, h *Host, conf map[string]any) error

// Host carries the in-process component life cycle: component setup,
// backup platform registration, shared singletons, and tracking of
// spawned work so callers can wait for it to settle.
type Host struct {
	// Supervised marks installs whose local backup storage is owned by a
	// supervisor process; the backup component then registers no local agent.
	Supervised bool

	mu         sync.Mutex
	components map[string]SetupFunc
	results    map[string]error
	platforms  map[string]domain.Platform
	data       map[string]any

	wg sync.WaitGroup
}

func New() *Host {
	return &Host{
		components: make(map[string]SetupFunc),
		results:    make(map[string]error),
		platforms:  make(map[string]domain.Platform),
		data:       make(map[string]any),
	}
}

func (h *Host) RegisterComponent(dom string, setup SetupFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.components[dom] = setup
}

// Setup runs a component's setup function. Repeated setup of the same
// domain is a no-op returning the first result.
func (h *Host) Setup(ctx context.Context, dom string, conf map[string]any) error {
	h.mu.Lock()
	if err, done := h.results[dom]; done {
		h.mu.Unlock()
		return err
	}
	setup, ok := h.components[dom]
	h.mu.Unlock()

	if !ok {
		return fmt.Errorf("unknown component: %s", dom)
	}

	err := setup(ctx, h, conf)

	h.mu.Lock()
	h.results[dom] = err
	h.mu.Unlock()

	return err
}

func (h *Host) IsLoaded(dom string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	err, done := h.results[dom]
	return done && err == nil
}

// RegisterBackupPlatform announces that a component contributes backup
// agents. The backup component collects registered platforms during setup.
func (h *Host) RegisterBackupPlatform(dom string, platform domain.Platform) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.platforms[dom] = platform
}

func (h *Host) BackupPlatforms() map[string]domain.Platform {
	h.mu.Lock()
	defer h.mu.Unlock()

	platforms := make(map[string]domain.Platform, len(h.platforms))
	for dom, platform := range h.platforms {
		platforms[dom] = platform
	}
	return platforms
}

func (h *Host) SetData(key string, value any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.data[key] = value
}

func (h *Host) Data(key string) any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.data[key]
}

// Go runs fn on a tracked goroutine.
func (h *Host) Go(fn func()) {
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		fn()
	}()
}

// BlockTillDone waits until all tracked work has settled or the context
// is cancelled.
func (h *Host) BlockTillDone(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
