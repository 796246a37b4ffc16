package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry holds the server's features and drives their lifecycle
type Registry struct {
	features map[string]Feature
	mutex    sync.RWMutex
	logger   *Logger
}

// NewRegistry creates a new feature registry
func NewRegistry(logger *Logger) *Registry {
	return &Registry{
		features: make(map[string]Feature),
		logger:   logger,
	}
}

// Register adds a feature to the registry
func (r *Registry) Register(feature Feature) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	name := feature.Name()
	if _, exists := r.features[name]; exists {
		return NewFeatureError(name, "already registered", nil)
	}

	r.features[name] = feature
	r.logger.Info("Registered feature", "name", name, "enabled", feature.Enabled())
	return nil
}

// Get retrieves a feature by name
func (r *Registry) Get(name string) (Feature, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	feature, exists := r.features[name]
	return feature, exists
}

// ListEnabled returns enabled features sorted by name
func (r *Registry) ListEnabled() []Feature {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	features := make([]Feature, 0, len(r.features))
	for _, feature := range r.features {
		if feature.Enabled() {
			features = append(features, feature)
		}
	}

	sort.Slice(features, func(i, j int) bool {
		return features[i].Name() < features[j].Name()
	})

	return features
}

// InitAll initializes all enabled features
func (r *Registry) InitAll(ctx context.Context) error {
	features := r.ListEnabled()
	r.logger.Info("Initializing features", "count", len(features))

	for _, feature := range features {
		if err := feature.Init(ctx); err != nil {
			r.logger.LogFeatureError(feature.Name(), "Failed to initialize feature", err)
			return fmt.Errorf("failed to initialize feature %s: %w", feature.Name(), err)
		}
	}

	return nil
}

// ShutdownAll shuts down every enabled feature, continuing past failures
func (r *Registry) ShutdownAll(ctx context.Context) {
	for _, feature := range r.ListEnabled() {
		if err := feature.Shutdown(ctx); err != nil {
			r.logger.Error("Failed to shutdown feature", "name", feature.Name(), "error", err)
		}
	}
}

// GetAllRoutes returns all routes from enabled features
func (r *Registry) GetAllRoutes() []Route {
	var allRoutes []Route
	for _, feature := range r.ListEnabled() {
		allRoutes = append(allRoutes, feature.Routes()...)
	}
	return allRoutes
}

// FeatureStatus represents the status of a feature
type FeatureStatus struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// GetFeatureStatus returns the status of all registered features
func (r *Registry) GetFeatureStatus() map[string]FeatureStatus {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	status := make(map[string]FeatureStatus, len(r.features))
	for name, feature := range r.features {
		status[name] = FeatureStatus{
			Name:        name,
			Description: feature.Description(),
			Enabled:     feature.Enabled(),
		}
	}
	return status
}
