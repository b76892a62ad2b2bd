package project

import "context"

// Store persists project aggregates as whole documents. Save overwrites the
// entire document unconditionally (last-writer-wins); callers are expected to
// serialize their own writes per project.
type Store interface {
	// Save writes the full project document, replacing any previous version.
	Save(ctx context.Context, p *Project) error

	// FindOne returns the project with the given id, or a NotFoundError.
	FindOne(ctx context.Context, id string) (*Project, error)

	// FindByType returns all projects of the given component kind.
	FindByType(ctx context.Context, kind Component) ([]*Project, error)

	// Delete removes the project document with the given id.
	Delete(ctx context.Context, id string) error
}
