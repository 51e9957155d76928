package focus

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/peterje/shelll/internal/events"
)

// scriptedInspector returns names in order, then repeats the last one.
type scriptedInspector struct {
	mu    sync.Mutex
	names []string
	i     int
}

func (s *scriptedInspector) FrontmostApplicationName(context.Context) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.names) == 0 {
		return "", false
	}
	if s.i < len(s.names) {
		n := s.names[s.i]
		s.i++
		return n, true
	}
	return s.names[len(s.names)-1], true
}

func (s *scriptedInspector) RunningApplications(context.Context) []RunningApp { return nil }

func (s *scriptedInspector) set(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names, s.i = names, 0
}

type focusRecorder struct {
	mu     sync.Mutex
	events []events.FocusChanged
}

func (r *focusRecorder) Emit(name string, payload any) {
	if name != events.NameAppFocusChanged {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, payload.(events.FocusChanged))
}

func (r *focusRecorder) snapshot() []events.FocusChanged {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.FocusChanged(nil), r.events...)
}

// waitEvents waits for n events, then a few more ticks to catch extras.
func (r *focusRecorder) waitEvents(t *testing.T, n int) []events.FocusChanged {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(r.snapshot()) < n && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	time.Sleep(30 * time.Millisecond)
	got := r.snapshot()
	if len(got) != n {
		t.Fatalf("got %d events, want %d: %+v", len(got), n, got)
	}
	return got
}

func newTestMonitor(insp Inspector) (*Monitor, *focusRecorder) {
	rec := &focusRecorder{}
	return NewMonitor(insp, rec, WithInterval(time.Millisecond)), rec
}

func TestMonitorDeduplicatesConsecutiveNames(t *testing.T) {
	insp := &scriptedInspector{names: []string{"A", "A", "B", "A"}}
	m, rec := newTestMonitor(insp)
	m.Start("Foo")
	defer m.Stop()

	got := rec.waitEvents(t, 3)
	want := []events.FocusChanged{
		{FocusedApp: "A"},
		{FocusedApp: "B"},
		{FocusedApp: "A"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %+v, want %+v", got, want)
	}
}

func TestMonitorFlags(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		target string
		want   []events.FocusChanged
	}{
		{
			name:   "target match is exact",
			names:  []string{"foo", "Foo"},
			target: "Foo",
			want: []events.FocusChanged{
				{FocusedApp: "foo"},
				{FocusedApp: "Foo", IsTargetFocused: true},
			},
		},
		{
			name:   "self names",
			names:  []string{"Shelll", "Terminal", "shelll"},
			target: "Terminal",
			want: []events.FocusChanged{
				{FocusedApp: "Shelll", IsSelfFocused: true},
				{FocusedApp: "Terminal", IsTargetFocused: true},
				{FocusedApp: "shelll", IsSelfFocused: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, rec := newTestMonitor(&scriptedInspector{names: tt.names})
			m.Start(tt.target)
			defer m.Stop()

			got := rec.waitEvents(t, len(tt.want))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMonitorStopThenStartWithNewTarget(t *testing.T) {
	insp := &scriptedInspector{names: []string{"Foo"}}
	m, rec := newTestMonitor(insp)

	m.Start("Foo")
	rec.waitEvents(t, 1)
	m.Stop()

	if m.Running() {
		t.Fatal("Running() = true after Stop")
	}
	if target, armed := m.Target(); armed || target != "" {
		t.Fatalf("Target() = %q, %v after Stop", target, armed)
	}

	insp.set("Foo", "Bar")
	m.Start("Bar")
	defer m.Stop()

	got := rec.waitEvents(t, 3)
	want := []events.FocusChanged{
		{FocusedApp: "Foo", IsTargetFocused: true},
		{FocusedApp: "Foo"},
		{FocusedApp: "Bar", IsTargetFocused: true},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %+v, want %+v", got, want)
	}
}

func TestMonitorNoEventsAfterStop(t *testing.T) {
	insp := &scriptedInspector{names: []string{"A"}}
	m, rec := newTestMonitor(insp)
	m.Start("A")
	rec.waitEvents(t, 1)
	m.Stop()

	insp.set("B", "C", "D")
	time.Sleep(20 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 1 {
		t.Errorf("events after Stop: %+v", got[1:])
	}
}

func TestMonitorStartTwiceRunsOneLoop(t *testing.T) {
	m, rec := newTestMonitor(&scriptedInspector{names: []string{"A"}})
	m.Start("x")
	m.Start("A")
	defer m.Stop()

	got := rec.waitEvents(t, 1)
	if got[0].FocusedApp != "A" {
		t.Errorf("event = %+v", got[0])
	}
	if target, _ := m.Target(); target != "A" {
		t.Errorf("Target() = %q, want A", target)
	}
}

func TestMonitorStopWhenNotRunning(t *testing.T) {
	m, _ := newTestMonitor(NoopInspector{})
	m.Stop()
	if m.Running() {
		t.Error("Running() = true")
	}
}

func TestMonitorWithoutInspectorCapabilityIsSilent(t *testing.T) {
	m, rec := newTestMonitor(NoopInspector{})
	m.Start("Foo")
	time.Sleep(20 * time.Millisecond)
	m.Stop()
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("unexpected events: %+v", got)
	}
}

func TestPollUnarmedEmitsNothing(t *testing.T) {
	m, rec := newTestMonitor(&scriptedInspector{names: []string{"A", "B"}})
	var st pollState
	m.poll(context.Background(), &st)
	m.poll(context.Background(), &st)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("unarmed monitor emitted %+v", got)
	}
	if st.last != "B" {
		t.Errorf("last seen = %q, want B", st.last)
	}
}

// Emitted names are the polled sequence with consecutive repeats removed.
func TestPollDedupProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	name := gen.OneConstOf("A", "B", "Foo", "Shelll")

	properties.Property("events collapse consecutive duplicates", prop.ForAll(
		func(names []string) bool {
			m, rec := newTestMonitor(&scriptedInspector{names: names})
			m.target, m.armed = "Foo", true

			var st pollState
			for range names {
				m.poll(context.Background(), &st)
			}

			var want []events.FocusChanged
			for i, n := range names {
				if i > 0 && names[i-1] == n {
					continue
				}
				want = append(want, events.FocusChanged{
					FocusedApp:      n,
					IsTargetFocused: n == "Foo",
					IsSelfFocused:   n == "Shelll",
				})
			}
			return reflect.DeepEqual(rec.snapshot(), want)
		},
		gen.SliceOf(name),
	))

	properties.TestingRun(t)
}
