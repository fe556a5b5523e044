package presenter

import (
	"context"
	"fmt"
	"weak"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/log"
)

// multiplex subscribes to the backend stream once and posts every item to
// the executor for dispatch. It only holds a weak reference to st: once the
// presenter state has been collected, remaining items are discarded and the
// loop ends. The loop also ends when the stream closes.
func multiplex(ctx context.Context, api backend.API, exec *executor.Executor, st weak.Pointer[state]) {
	ch := api.Subscribe(ctx)
	go func() {
		for n := range ch {
			if st.Value() == nil {
				log.Debug(log.CatNotify, "Presenter gone, discarding notifications")
				return
			}
			exec.Post(func() {
				if s := st.Value(); s != nil {
					s.dispatch(n)
				}
			})
		}
		log.Debug(log.CatNotify, "Notification stream ended")
	}()
}

func (s *state) dispatch(n backend.Notification) {
	log.Debug(log.CatNotify, "Notification", "item", n)
	switch n := n.(type) {
	case backend.Event:
		s.registry.OnEvent(n.Label)
	case backend.BackgroundTaskStarted:
		s.registry.OnStarted(n.Label, n.Handle)
	case backend.BackgroundTaskFinished:
		s.registry.OnFinished(n.Handle)
	case backend.NewProjectCreated, backend.ProjectOpened:
		s.sessions.SetupCurrentProject()
	default:
		log.Warn(log.CatNotify, "Unhandled notification", "type", fmt.Sprintf("%T", n))
	}
}
