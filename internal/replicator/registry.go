// Package replicator drives replication items through their lifecycle.
package replicator

import (
	"context"
	"fmt"
	"sync"

	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/secret"
)

// Mode selects how a kind's replication workflow is dispatched.
type Mode int

const (
	// ModeNone marks kinds whose items are registered but not submitted to a
	// replication workflow (dump/replica kinds driven by separate operations).
	ModeNone Mode = iota
	// ModeDetached submits the workflow on a background worker and records
	// the outcome when it finishes.
	ModeDetached
	// ModeHandle starts the workflow asynchronously and stores its
	// cancellable execution handle on the item.
	ModeHandle
)

// Kind is the capability of one component kind: how to validate a candidate
// item against live inventory and how to build its replication request.
type Kind interface {
	// Component returns the kind this handler serves.
	Component() project.Component

	// Mode returns how replication is dispatched for this kind.
	Mode() Mode

	// Machine returns the name of the state machine driving replication.
	Machine() string

	// Validate checks the candidate item against live cloud inventory.
	Validate(ctx context.Context, p *project.Project, item *project.Item) error

	// Request builds the serialized workflow request for the item.
	Request(p *project.Project, item *project.Item) any

	// MergeResult folds the workflow's output payload into the item.
	MergeResult(item *project.Item, output string) error
}

// CredentialResolver produces the credential for one side of a project.
type CredentialResolver interface {
	CredentialFor(ctx context.Context, p *project.Project, side project.Side) (*secret.Credential, error)
}

// WorkflowRunner is the narrow contract of the external workflow engine.
type WorkflowRunner interface {
	Execute(ctx context.Context, machine string, input any) (string, error)
	StartAsync(ctx context.Context, machine string, input any) (string, error)
	Await(ctx context.Context, machine, executionArn string) (string, error)
	Stop(ctx context.Context, executionArn string) error
}

// ReadinessProber answers whether a region is prepared for continuous change
// capture.
type ReadinessProber interface {
	WatchReady(ctx context.Context, region project.Region) (bool, error)
}

// Registry maps component kinds to their handlers. Handlers are registered at
// startup and looked up by the project's declared type.
type Registry struct {
	mu    sync.RWMutex
	kinds map[project.Component]Kind
}

// NewRegistry creates an empty kind registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[project.Component]Kind)}
}

// Register registers a kind handler.
func (r *Registry) Register(kinds ...Kind) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, k := range kinds {
		if _, exists := r.kinds[k.Component()]; exists {
			return fmt.Errorf("kind handler for %s already registered", k.Component())
		}
		r.kinds[k.Component()] = k
	}
	return nil
}

// Get retrieves the kind handler for the given component.
func (r *Registry) Get(c project.Component) (Kind, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kind, exists := r.kinds[c]
	if !exists {
		return nil, fmt.Errorf("no kind handler registered for %s", c)
	}
	return kind, nil
}
