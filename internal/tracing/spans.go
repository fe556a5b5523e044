package tracing

// Span attribute keys.
const (
	AttrProjectID   = "project.id"
	AttrProjectName = "project.name"
	AttrProjects    = "project.count"
	AttrTaskHandle  = "task.handle"
	AttrTaskLabel   = "task.label"
	AttrNotifyKind  = "notification.kind"
	AttrErrorType   = "error.type"
)

// Span names.
const (
	SpanPrefixBackend = "backend."

	SpanListProjects      = SpanPrefixBackend + "list_projects"
	SpanOpenProject       = SpanPrefixBackend + "open_project"
	SpanCreateProject     = SpanPrefixBackend + "create_project"
	SpanInitializeProject = SpanPrefixBackend + "initialize_project"
	SpanNotifications     = SpanPrefixBackend + "notifications"
)

// Event names.
const (
	EventNotification = "notification"
)
