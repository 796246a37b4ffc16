package core

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
)

type stubFeature struct {
	*Lifecycle
	initErr     error
	shutdownErr error
	shutdowns   *int
}

func newStubFeature(name string, enabled bool, shutdowns *int) *stubFeature {
	f := &stubFeature{
		Lifecycle: NewLifecycle(name, name+" feature", enabled, testLogger()),
		shutdowns: shutdowns,
	}
	f.OnStart("load", func(context.Context) error { return f.initErr })
	return f
}

func (f *stubFeature) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: "/" + f.Name(), Handler: func(http.ResponseWriter, *http.Request) {}}}
}

func (f *stubFeature) Shutdown(ctx context.Context) error {
	*f.shutdowns++
	return f.shutdownErr
}

func TestRegistry(t *testing.T) {
	var shutdowns int
	r := NewRegistry(testLogger())

	beta := newStubFeature("beta", true, &shutdowns)
	beta.shutdownErr = errors.New("stuck")
	for _, f := range []*stubFeature{beta, newStubFeature("alpha", true, &shutdowns), newStubFeature("off", false, &shutdowns)} {
		if err := r.Register(f); err != nil {
			t.Fatalf("Register(%s): %v", f.Name(), err)
		}
	}

	if err := r.Register(newStubFeature("alpha", true, &shutdowns)); !HasCode(err, ErrCodeFeature) {
		t.Errorf("duplicate registration error = %v", err)
	}

	if _, ok := r.Get("off"); !ok {
		t.Error("disabled features are still registered")
	}

	enabled := r.ListEnabled()
	if len(enabled) != 2 || enabled[0].Name() != "alpha" || enabled[1].Name() != "beta" {
		t.Errorf("enabled = %v", enabled)
	}

	routes := r.GetAllRoutes()
	if len(routes) != 2 || routes[0].Path != "/alpha" {
		t.Errorf("routes = %+v", routes)
	}

	if err := r.InitAll(context.Background()); err != nil {
		t.Fatalf("InitAll: %v", err)
	}

	r.ShutdownAll(context.Background())
	if shutdowns != 2 {
		t.Errorf("shutdowns = %d, want 2 despite the failing feature", shutdowns)
	}

	if status := r.GetFeatureStatus(); len(status) != 3 || status["off"].Enabled {
		t.Errorf("status = %+v", status)
	}
}

func TestRegistryInitFailure(t *testing.T) {
	var shutdowns int
	r := NewRegistry(testLogger())

	broken := newStubFeature("broken", true, &shutdowns)
	broken.initErr = errors.New("bad config")
	r.Register(broken)

	err := r.InitAll(context.Background())
	if err == nil || !errors.Is(err, broken.initErr) {
		t.Errorf("InitAll error = %v", err)
	}
}

func TestLifecycleRunsStepsInOrder(t *testing.T) {
	var ran []string
	l := NewLifecycle("feed", "feed feature", true, testLogger())
	for _, name := range []string{"config", "schema", "cache"} {
		l.OnStart(name, func(context.Context) error {
			ran = append(ran, name)
			if name == "schema" {
				return errors.New("table locked")
			}
			return nil
		})
	}

	err := l.Init(context.Background())
	if !HasCode(err, ErrCodeFeature) {
		t.Fatalf("Init error = %v, want FEATURE_ERROR", err)
	}
	if !strings.Contains(err.Error(), "schema failed") || !strings.Contains(err.Error(), "table locked") {
		t.Errorf("error %q should name the step and the cause", err)
	}
	if strings.Join(ran, ",") != "config,schema" {
		t.Errorf("ran = %v, want steps after the failure skipped", ran)
	}
}

func TestLifecycleInitCancelled(t *testing.T) {
	l := NewLifecycle("feed", "feed feature", true, testLogger())
	l.OnStart("config", func(context.Context) error {
		t.Error("step must not run on a cancelled context")
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Init(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Init error = %v, want context.Canceled", err)
	}
	if l.Routes() != nil || l.Shutdown(context.Background()) != nil {
		t.Error("a bare lifecycle has no routes and nothing to stop")
	}
}
