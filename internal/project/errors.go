package project

import "fmt"

// DuplicateItemError is returned when an item with the same identity already
// exists in the project.
type DuplicateItemError struct {
	Source string
	Target string
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("duplicate replication item (from %s to %s)", e.Source, e.Target)
}

// RegionMismatchError is returned when a resource lives in a different region
// than the project declares for its side.
type RegionMismatchError struct {
	Side     Side
	Resource string
	Want     Region
}

func (e *RegionMismatchError) Error() string {
	return fmt.Sprintf("%s %s is not in region %s", e.Side, e.Resource, e.Want)
}

// ResourceNotFoundError is returned when a resource cannot be resolved in the
// region the project declares for its side.
type ResourceNotFoundError struct {
	Side     Side
	Resource string
	Region   Region
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("unable to find %s %s in %s", e.Side, e.Resource, e.Region)
}

// PreconditionError is returned when an external readiness check rejects the
// requested mode, e.g. continuous VPC replication in an unprepared region.
type PreconditionError struct {
	Reason string
}

func (e *PreconditionError) Error() string { return e.Reason }

// InvalidTransitionError is returned when a lifecycle event is not legal in
// the item's current state. The persisted state is left untouched.
type InvalidTransitionError struct {
	From  State
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s an item in state %s", e.Event, e.From)
}

// NotFoundError is returned when a project or item does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
