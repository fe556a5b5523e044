package presenter

import (
	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/log"
)

// Registry maps backend task handles to status bar process entries. It is
// also the status channel: presenter components report user-visible
// messages through OnEvent.
//
// Every held ProcessID corresponds to exactly one outstanding backend task.
// Not safe for concurrent use; it is only touched from executor tasks.
type Registry struct {
	bar     StatusBar
	handles map[backend.TaskHandle]ProcessID
}

// NewRegistry creates an empty registry feeding bar.
func NewRegistry(bar StatusBar) *Registry {
	return &Registry{
		bar:     bar,
		handles: make(map[backend.TaskHandle]ProcessID),
	}
}

// OnEvent shows a one-off message.
func (r *Registry) OnEvent(label string) {
	log.Debug(log.CatStatus, "Status event", "label", label)
	r.bar.AddEvent(label)
}

// OnStarted adds a process entry for handle. Starting a handle that is
// already mapped retires its previous entry first.
func (r *Registry) OnStarted(label string, handle backend.TaskHandle) {
	if stale, ok := r.handles[handle]; ok {
		log.Warn(log.CatStatus, "Task started twice, retiring previous entry", "handle", handle)
		r.bar.FinishProcess(stale)
	}
	id := r.bar.AddProcess(label)
	r.handles[handle] = id
	log.Debug(log.CatStatus, "Task started", "handle", handle, "process", id, "label", label)
}

// OnFinished retires the entry for handle. An unknown handle is logged and
// otherwise ignored.
func (r *Registry) OnFinished(handle backend.TaskHandle) {
	id, ok := r.handles[handle]
	if !ok {
		log.Warn(log.CatStatus, "Finished task was never started", "handle", handle)
		return
	}
	delete(r.handles, handle)
	r.bar.FinishProcess(id)
	log.Debug(log.CatStatus, "Task finished", "handle", handle, "process", id)
}

// Lookup returns the process entry for handle.
func (r *Registry) Lookup(handle backend.TaskHandle) (ProcessID, bool) {
	id, ok := r.handles[handle]
	return id, ok
}

// Len returns the number of outstanding tasks.
func (r *Registry) Len() int {
	return len(r.handles)
}
