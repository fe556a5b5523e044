package presenter

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/log"
)

// fakeView records every call the presenter makes. It is only touched from
// executor tasks, which tests run on the test goroutine.
type fakeView struct {
	events    []string
	active    map[ProcessID]string
	finished  []ProcessID
	nextID    ProcessID
	projects  [][]string
	switches  int
	shown     []*Session
	projectVw *fakeProjectView
}

type fakeProjectView struct {
	v *fakeView
}

func newFakeView() *fakeView {
	v := &fakeView{active: make(map[ProcessID]string)}
	v.projectVw = &fakeProjectView{v: v}
	return v
}

var _ View = (*fakeView)(nil)

func (v *fakeView) StatusBar() StatusBar       { return v }
func (v *fakeView) WelcomeScreen() WelcomeView { return v }
func (v *fakeView) ProjectView() ProjectView   { return v.projectVw }
func (v *fakeView) SwitchToProject()           { v.switches++ }

func (v *fakeView) AddEvent(label string) { v.events = append(v.events, label) }

func (v *fakeView) AddProcess(label string) ProcessID {
	v.nextID++
	v.active[v.nextID] = label
	return v.nextID
}

func (v *fakeView) FinishProcess(id ProcessID) {
	delete(v.active, id)
	v.finished = append(v.finished, id)
}

func (v *fakeView) SetProjects(names []string) { v.projects = append(v.projects, names) }

func (p *fakeProjectView) Show(s *Session) { p.v.shown = append(p.v.shown, s) }

// logBuffer is a goroutine-safe capture of log output.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) count(level string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Count(b.buf.String(), "["+level+"]")
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func captureLog(t *testing.T) *logBuffer {
	t.Helper()
	b := &logBuffer{}
	log.SetOutput(b)
	t.Cleanup(func() { log.SetOutput(nil) })
	return b
}

// settleUntil drives the executor on the test goroutine until cond holds.
// Used where work arrives from the notification goroutine.
func settleUntil(t *testing.T, e *executor.Executor, r *executor.ManualRunner, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		executor.Settle(e, r)
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
