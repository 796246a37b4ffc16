package core

import (
	"context"
	"net/http"
	"time"
)

// Feature is a part of the server that mounts its own routes. The registry
// starts every enabled feature before the server listens and stops them on
// shutdown.
type Feature interface {
	Name() string
	Description() string
	Enabled() bool
	Init(ctx context.Context) error
	Routes() []Route
	Shutdown(ctx context.Context) error
}

// Route is one handler a feature mounts on the router
type Route struct {
	Method  string
	Path    string
	Handler http.HandlerFunc
}

type startStep struct {
	name string
	run  func(ctx context.Context) error
}

// Lifecycle carries a feature's identity and its ordered startup steps.
// Features embed it and register steps with OnStart rather than overriding
// Init.
type Lifecycle struct {
	name        string
	description string
	enabled     bool
	logger      *Logger

	steps []startStep
}

func NewLifecycle(name, description string, enabled bool, logger *Logger) *Lifecycle {
	return &Lifecycle{
		name:        name,
		description: description,
		enabled:     enabled,
		logger:      logger,
	}
}

func (l *Lifecycle) Name() string        { return l.name }
func (l *Lifecycle) Description() string { return l.description }
func (l *Lifecycle) Enabled() bool       { return l.enabled }

// Logger returns the logger tagged with the feature name
func (l *Lifecycle) Logger() *Logger {
	return l.logger.ForFeature(l.name)
}

// OnStart appends a startup step. Steps run in the order they were added.
func (l *Lifecycle) OnStart(name string, run func(ctx context.Context) error) {
	l.steps = append(l.steps, startStep{name: name, run: run})
}

// Init runs the startup steps and stops at the first one that fails. The
// failure comes back as FEATURE_ERROR naming the step.
func (l *Lifecycle) Init(ctx context.Context) error {
	logger := l.Logger()
	started := time.Now()

	for _, step := range l.steps {
		if err := ctx.Err(); err != nil {
			return NewFeatureError(l.name, step.name+" cancelled", err)
		}

		stepStart := time.Now()
		if err := step.run(ctx); err != nil {
			return NewFeatureError(l.name, step.name+" failed", err)
		}
		logger.Debug("Startup step done", "step", step.name, "duration", time.Since(stepStart))
	}

	logger.Info("Feature started", "steps", len(l.steps), "duration", time.Since(started))
	return nil
}

func (l *Lifecycle) Routes() []Route {
	return nil
}

func (l *Lifecycle) Shutdown(ctx context.Context) error {
	l.Logger().Info("Feature stopped")
	return nil
}
