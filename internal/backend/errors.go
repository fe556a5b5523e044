package backend

import "errors"

// ===========================================================================
// Project Errors
// ===========================================================================

// ErrProjectNotFound is returned when no project has the requested id or name.
var ErrProjectNotFound = errors.New("project not found")

// ErrProjectExists is returned when creating a project whose name is taken.
var ErrProjectExists = errors.New("project already exists")

// ErrNoProjectManager is returned by backends opened on a single project
// without project-management capability.
var ErrNoProjectManager = errors.New("project management is not available")

// ===========================================================================
// Lifecycle Errors
// ===========================================================================

// ErrClosed is returned by every operation after the backend is closed.
var ErrClosed = errors.New("backend is closed")
