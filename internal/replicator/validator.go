package replicator

import (
	"context"

	"github.com/regionsync/regionsync/internal/project"
)

// Validator enforces uniqueness and region-affinity invariants before an item
// is accepted into a project. It never mutates the project; the orchestrator
// appends only after validation passes.
type Validator struct {
	kinds *Registry
}

// NewValidator creates a validator over the given kind registry.
func NewValidator(kinds *Registry) *Validator {
	return &Validator{kinds: kinds}
}

// ValidateAdd checks the candidate item for duplicate identity and delegates
// kind-specific inventory checks. A nil return approves the add.
func (v *Validator) ValidateAdd(ctx context.Context, p *project.Project, item *project.Item) error {
	for _, existing := range p.Items() {
		if existing.ID == item.ID {
			return &project.DuplicateItemError{Source: item.Source, Target: item.Target}
		}
	}

	kind, err := v.kinds.Get(p.Type)
	if err != nil {
		return err
	}
	return kind.Validate(ctx, p, item)
}
