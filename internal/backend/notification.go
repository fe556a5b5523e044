package backend

import "fmt"

// TaskHandle identifies a background task for its whole lifetime.
type TaskHandle string

// Notification is an item of the unified notification stream. The set of
// implementations is closed: Event, BackgroundTaskStarted,
// BackgroundTaskFinished, NewProjectCreated and ProjectOpened.
type Notification interface {
	notification()
	fmt.Stringer
}

// StatusNotification is the subset of notifications that only feed the
// status bar.
type StatusNotification interface {
	Notification
	status()
}

// Event is a one-off user-visible message.
type Event struct {
	Label string
}

// BackgroundTaskStarted announces a long-running task.
type BackgroundTaskStarted struct {
	Label  string
	Handle TaskHandle
}

// BackgroundTaskFinished announces the end of a task started earlier.
type BackgroundTaskFinished struct {
	Handle TaskHandle
}

// NewProjectCreated announces that a freshly created project became current.
type NewProjectCreated struct{}

// ProjectOpened announces that an existing project became current.
type ProjectOpened struct{}

func (Event) notification()                  {}
func (BackgroundTaskStarted) notification()  {}
func (BackgroundTaskFinished) notification() {}
func (NewProjectCreated) notification()      {}
func (ProjectOpened) notification()          {}

func (Event) status()                  {}
func (BackgroundTaskStarted) status()  {}
func (BackgroundTaskFinished) status() {}

func (n Event) String() string { return fmt.Sprintf("Event{%q}", n.Label) }
func (n BackgroundTaskStarted) String() string {
	return fmt.Sprintf("BackgroundTaskStarted{%q, %s}", n.Label, n.Handle)
}
func (n BackgroundTaskFinished) String() string {
	return fmt.Sprintf("BackgroundTaskFinished{%s}", n.Handle)
}
func (NewProjectCreated) String() string { return "NewProjectCreated" }
func (ProjectOpened) String() string     { return "ProjectOpened" }
