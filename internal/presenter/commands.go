package presenter

import (
	"context"
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/zjrosen/atelier/internal/backend"
	"github.com/zjrosen/atelier/internal/executor"
	"github.com/zjrosen/atelier/internal/log"
)

// maxSuggestionDistance bounds the edit distance of "did you mean" hints.
const maxSuggestionDistance = 2

// Commands turns user intents into backend calls. Every command returns
// immediately; its outcome shows up in the status bar and as a view switch.
type Commands struct {
	exec     *executor.Executor
	api      backend.API
	view     View
	status   *Registry
	switcher *ViewSwitch
}

// NewCommands creates the command dispatcher.
func NewCommands(exec *executor.Executor, api backend.API, view View, status *Registry, switcher *ViewSwitch) *Commands {
	return &Commands{exec: exec, api: api, view: view, status: status, switcher: switcher}
}

// OpenProject lists projects, picks the first one named exactly name and
// opens it.
func (c *Commands) OpenProject(name string) {
	log.Info(log.CatCommand, "Open project", "name", name)
	executor.Spawn(c.exec, c.api.ListProjects, func(projects []backend.Project, err error) {
		if err != nil {
			c.report(fmt.Sprintf("Could not list projects: %v", err), err)
			return
		}
		project, err := findProject(projects, name)
		if err != nil {
			c.report(err.Error(), err)
			return
		}
		c.open(project)
	})
}

func (c *Commands) open(project backend.Project) {
	log.Debug(log.CatCommand, "Opening project", "name", project.Name, "id", project.ID)
	executor.Spawn(c.exec,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.api.OpenProject(ctx, project.ID)
		},
		func(_ struct{}, err error) {
			if err != nil {
				c.report(fmt.Sprintf("Could not open project %s: %v", project.Name, err), err)
				return
			}
			log.Info(log.CatCommand, "Project opened", "name", project.Name)
			c.switcher.Switch()
		},
	)
}

// CreateProject asks the backend for a new project.
func (c *Commands) CreateProject() {
	log.Info(log.CatCommand, "Create project")
	executor.Spawn(c.exec,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, c.api.CreateProject(ctx)
		},
		func(_ struct{}, err error) {
			if err != nil {
				c.report(fmt.Sprintf("Could not create new project: %v", err), err)
				return
			}
			log.Info(log.CatCommand, "Project created")
			c.switcher.Switch()
		},
	)
}

// PopulateWelcomeScreen fills the welcome screen with project names.
func (c *Commands) PopulateWelcomeScreen() {
	executor.Spawn(c.exec, c.api.ListProjects, func(projects []backend.Project, err error) {
		if err != nil {
			c.report(fmt.Sprintf("Unable to get list of projects: %v", err), err)
			return
		}
		names := make([]string, len(projects))
		for i, p := range projects {
			names[i] = p.Name
		}
		log.Debug(log.CatCommand, "Populating welcome screen", "projects", len(names))
		c.view.WelcomeScreen().SetProjects(names)
	})
}

func (c *Commands) report(msg string, err error) {
	if errors.Is(err, backend.ErrNoProjectManager) {
		log.Warn(log.CatCommand, "Backend cannot manage projects")
	}
	log.ErrorErr(log.CatCommand, msg, err)
	c.status.OnEvent(msg)
}

// findProject returns the first project named exactly name.
func findProject(projects []backend.Project, name string) (backend.Project, error) {
	for _, p := range projects {
		if p.Name == name {
			return p, nil
		}
	}
	msg := fmt.Sprintf("Could not find project with name %s", name)
	if s, ok := suggest(projects, name); ok {
		msg += fmt.Sprintf(" (did you mean %s?)", s)
	}
	return backend.Project{}, &notFoundError{msg: msg}
}

// suggest returns the closest project name within maxSuggestionDistance.
func suggest(projects []backend.Project, name string) (string, bool) {
	best, bestDist := "", maxSuggestionDistance+1
	for _, p := range projects {
		if d := levenshtein.ComputeDistance(p.Name, name); d < bestDist {
			best, bestDist = p.Name, d
		}
	}
	return best, best != ""
}

type notFoundError struct {
	msg string
}

func (e *notFoundError) Error() string { return e.msg }
func (e *notFoundError) Unwrap() error { return backend.ErrProjectNotFound }
