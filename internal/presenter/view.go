package presenter

// ProcessID is the status bar's identifier for a progress entry.
type ProcessID int

// StatusBar shows one-off events and in-flight processes.
type StatusBar interface {
	AddEvent(label string)
	AddProcess(label string) ProcessID
	FinishProcess(id ProcessID)
}

// WelcomeView lists the projects the user can open.
type WelcomeView interface {
	SetProjects(names []string)
}

// ProjectView displays the active session.
type ProjectView interface {
	Show(s *Session)
}

// View is the view collaborator the presenter drives. Every method is
// called from executor tasks only.
type View interface {
	StatusBar() StatusBar
	WelcomeScreen() WelcomeView
	ProjectView() ProjectView
	// SwitchToProject detaches the welcome screen and attaches the project
	// screen.
	SwitchToProject()
}
