// Package fake provides a deterministic, state-based implementation of
// backend.API for tests.
//
// Every operation completes synchronously on the calling goroutine, so the
// order in which suspended operations finish is chosen entirely by the
// executor's runner (see executor.NewManual). Calls are recorded for
// assertions and every operation can be overridden through a function field.
//
//	api := fake.New(
//	    fake.Project{Name: "Foo", ID: id1},
//	    fake.Project{Name: "Bar", ID: id2},
//	)
//	api.ListErr = errors.New("offline")
//
//	// after driving the presenter
//	require.Equal(t, []backend.ProjectID{id1}, api.OpenCalls())
//
// Notifications are pushed with Emit and delivered in order to every
// subscriber, exactly like a real backend's stream.
package fake
