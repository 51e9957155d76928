package focus

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/peterje/shelll/internal/events"
)

// DefaultPollInterval is how often the frontmost application is sampled.
const DefaultPollInterval = 200 * time.Millisecond

// DefaultSelfNames are the display names of this application.
var DefaultSelfNames = []string{"Shelll", "shelll"}

// Monitor polls the frontmost application and emits app-focus-changed when
// it changes. At most one polling loop runs at a time.
type Monitor struct {
	inspector Inspector
	emitter   events.Emitter
	interval  time.Duration
	selfNames map[string]bool

	// mu guards the loop state and the target together.
	mu      sync.Mutex
	running bool
	target  string
	armed   bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

// WithSelfNames overrides the names treated as this application.
func WithSelfNames(names ...string) Option {
	return func(m *Monitor) {
		m.selfNames = make(map[string]bool, len(names))
		for _, n := range names {
			m.selfNames[n] = true
		}
	}
}

func NewMonitor(inspector Inspector, emitter events.Emitter, opts ...Option) *Monitor {
	if inspector == nil {
		inspector = NoopInspector{}
	}
	if emitter == nil {
		emitter = events.Discard
	}
	m := &Monitor{
		inspector: inspector,
		emitter:   emitter,
		interval:  DefaultPollInterval,
	}
	WithSelfNames(DefaultSelfNames...)(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start arms the monitor with target. If a loop is already running only the
// target changes.
func (m *Monitor) Start(target string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.target = target
	m.armed = true
	if m.running {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	m.running = true
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.loop(ctx, m.done)
	log.Printf("focus: monitor started (target %q)", target)
}

// Stop clears the target and waits for the loop to exit, so no event is
// emitted once Stop returns.
func (m *Monitor) Stop() {
	m.mu.Lock()
	m.target = ""
	m.armed = false
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.cancel()
	done := m.done
	m.mu.Unlock()

	<-done
	log.Printf("focus: monitor stopped")
}

// Running reports whether a polling loop is active.
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Target returns the current target, if armed.
func (m *Monitor) Target() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target, m.armed
}

type pollState struct {
	last string
	seen bool
}

func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var st pollState
	for {
		m.poll(ctx, &st)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// poll samples the frontmost app once and emits if it changed and the
// monitor is armed.
func (m *Monitor) poll(ctx context.Context, st *pollState) {
	name, ok := m.inspector.FrontmostApplicationName(ctx)
	if !ok || (st.seen && name == st.last) {
		return
	}
	st.last, st.seen = name, true

	// Re-read the target; it may have changed since the last tick.
	m.mu.Lock()
	if ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	target, armed := m.target, m.armed
	m.mu.Unlock()

	if !armed {
		return
	}
	m.emitter.Emit(events.NameAppFocusChanged, events.FocusChanged{
		FocusedApp:      name,
		IsTargetFocused: name == target,
		IsSelfFocused:   m.selfNames[name],
	})
}
