package project

import (
	"fmt"
	"time"
)

// State is the lifecycle state of a replication item.
type State string

// Lifecycle states. Pending is the implicit state before first submission;
// Replicated, Failed and Stopped are terminal until an explicit re-invocation.
const (
	StatePending     State = "PENDING"
	StateReplicating State = "REPLICATING"
	StateReplicated  State = "REPLICATED"
	StateFailed      State = "FAILED"
	StateStopped     State = "STOPPED"
)

// Terminal reports whether the state ends a replication run.
func (s State) Terminal() bool {
	return s == StateReplicated || s == StateFailed || s == StateStopped
}

// Item is one source-to-target replication unit within a project. The meaning
// of Source and Target depends on the project's component kind (bucket name,
// table name, VPC id, instance id). ExecutionArn is set only for kinds whose
// workflow returns a cancellable handle. Cidr and Continuous are VPC-only.
type Item struct {
	ID           string     `dynamodbav:"id" json:"id"`
	Source       string     `dynamodbav:"source" json:"source"`
	Target       string     `dynamodbav:"target" json:"target"`
	State        State      `dynamodbav:"state" json:"state"`
	StartTime    *time.Time `dynamodbav:"startTime,omitempty" json:"startTime,omitempty"`
	EndTime      *time.Time `dynamodbav:"endTime,omitempty" json:"endTime,omitempty"`
	ExecutionArn string     `dynamodbav:"executionArn,omitempty" json:"executionArn,omitempty"`
	Cidr         string     `dynamodbav:"cidr,omitempty" json:"cidr,omitempty"`
	Continuous   bool       `dynamodbav:"continuous,omitempty" json:"continuous,omitempty"`
}

// NewItem creates a pending item for the given pair. The identity is derived
// from the pair unless the caller supplies its own id on the returned item.
func NewItem(source, target string) *Item {
	return &Item{
		ID:     ItemID(source, target),
		Source: source,
		Target: target,
		State:  StatePending,
	}
}

// ItemID derives an item identity from its source and target identifiers.
func ItemID(source, target string) string {
	return fmt.Sprintf("%s:%s", source, target)
}

// Begin moves the item into Replicating and stamps the start time. A run may
// begin from Pending or be explicitly re-invoked from any terminal state; an
// item that is already replicating cannot begin again.
func (i *Item) Begin(now time.Time) error {
	if i.State == StateReplicating {
		return &InvalidTransitionError{From: i.State, Event: "start"}
	}
	i.State = StateReplicating
	i.StartTime = &now
	i.EndTime = nil
	return nil
}

// Complete moves a replicating item into Replicated and stamps the end time.
func (i *Item) Complete(now time.Time) error {
	if i.State != StateReplicating {
		return &InvalidTransitionError{From: i.State, Event: "complete"}
	}
	i.State = StateReplicated
	i.EndTime = &now
	return nil
}

// Fail moves a replicating item into Failed and stamps the end time.
func (i *Item) Fail(now time.Time) error {
	if i.State != StateReplicating {
		return &InvalidTransitionError{From: i.State, Event: "fail"}
	}
	i.State = StateFailed
	i.EndTime = &now
	return nil
}

// Halt moves a replicating item into Stopped. Halting an item that is already
// stopped is a no-op; it reports whether the item changed state.
func (i *Item) Halt(now time.Time) (bool, error) {
	if i.State == StateStopped {
		return false, nil
	}
	if i.State != StateReplicating {
		return false, &InvalidTransitionError{From: i.State, Event: "stop"}
	}
	i.State = StateStopped
	i.EndTime = &now
	return true, nil
}
