// Package tracing decorates a backend.API with OpenTelemetry spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/atelier/internal/backend"
	attrs "github.com/zjrosen/atelier/internal/tracing"
)

// API traces every call made through it. A nil tracer makes Wrap return
// next unchanged.
type API struct {
	next   backend.API
	tracer trace.Tracer
}

var _ backend.API = (*API)(nil)

// Wrap returns next decorated with spans from tracer.
func Wrap(next backend.API, tracer trace.Tracer) backend.API {
	if tracer == nil {
		return next
	}
	return &API{next: next, tracer: tracer}
}

func (a *API) start(ctx context.Context, name string, kvs ...attribute.KeyValue) (context.Context, trace.Span) {
	return a.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(kvs...),
	)
}

func end(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(attrs.AttrErrorType, fmt.Sprintf("%T", err)))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func (a *API) ListProjects(ctx context.Context) ([]backend.Project, error) {
	ctx, span := a.start(ctx, attrs.SpanListProjects)
	projects, err := a.next.ListProjects(ctx)
	span.SetAttributes(attribute.Int(attrs.AttrProjects, len(projects)))
	end(span, err)
	return projects, err
}

func (a *API) OpenProject(ctx context.Context, id backend.ProjectID) error {
	ctx, span := a.start(ctx, attrs.SpanOpenProject, attribute.String(attrs.AttrProjectID, id.String()))
	err := a.next.OpenProject(ctx, id)
	end(span, err)
	return err
}

func (a *API) CreateProject(ctx context.Context) error {
	ctx, span := a.start(ctx, attrs.SpanCreateProject)
	err := a.next.CreateProject(ctx)
	end(span, err)
	return err
}

func (a *API) InitializeProject(ctx context.Context, ref backend.ProjectRef) (*backend.InitResult, error) {
	ctx, span := a.start(ctx, attrs.SpanInitializeProject,
		attribute.String(attrs.AttrProjectID, ref.ID().String()),
		attribute.String(attrs.AttrProjectName, ref.Name()),
	)
	res, err := a.next.InitializeProject(ctx, ref)
	end(span, err)
	return res, err
}

func (a *API) CurrentProject() backend.ProjectRef {
	return a.next.CurrentProject()
}

// Subscribe records one span per delivered notification. Delivery order is
// unchanged.
func (a *API) Subscribe(ctx context.Context) <-chan backend.Notification {
	in := a.next.Subscribe(ctx)
	out := make(chan backend.Notification)
	go func() {
		defer close(out)
		for n := range in {
			_, span := a.tracer.Start(ctx, attrs.SpanNotifications,
				trace.WithSpanKind(trace.SpanKindConsumer),
				trace.WithAttributes(attribute.String(attrs.AttrNotifyKind, kind(n))),
			)
			switch n := n.(type) {
			case backend.BackgroundTaskStarted:
				span.SetAttributes(
					attribute.String(attrs.AttrTaskHandle, string(n.Handle)),
					attribute.String(attrs.AttrTaskLabel, n.Label),
				)
			case backend.BackgroundTaskFinished:
				span.SetAttributes(attribute.String(attrs.AttrTaskHandle, string(n.Handle)))
			}
			span.End()

			select {
			case out <- n:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

func kind(n backend.Notification) string {
	switch n.(type) {
	case backend.Event:
		return "Event"
	case backend.BackgroundTaskStarted:
		return "BackgroundTaskStarted"
	case backend.BackgroundTaskFinished:
		return "BackgroundTaskFinished"
	case backend.NewProjectCreated:
		return "NewProjectCreated"
	case backend.ProjectOpened:
		return "ProjectOpened"
	default:
		return fmt.Sprintf("%T", n)
	}
}
