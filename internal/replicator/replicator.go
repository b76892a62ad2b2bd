package replicator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/machine"
	"github.com/regionsync/regionsync/internal/project"
)

// Orchestrator drives replication items through their lifecycle: validate on
// add, submit to the external workflow engine, track, and finalize. Every
// read-modify-write against the store runs in a per-project critical section,
// and every state transition is persisted as a full-document snapshot before
// control leaves the orchestrator.
type Orchestrator struct {
	store     project.Store
	runner    WorkflowRunner
	kinds     *Registry
	validator *Validator
	pool      *Pool
	log       *logger.Logger
	locks     *mutexMap
	now       func() time.Time
}

// New creates an orchestrator over the given collaborators.
func New(store project.Store, runner WorkflowRunner, kinds *Registry, pool *Pool, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		runner:    runner,
		kinds:     kinds,
		validator: NewValidator(kinds),
		pool:      pool,
		log:       log,
		locks:     newMutexMap(),
		now:       time.Now,
	}
}

// update runs fn on a freshly loaded project inside the project's critical
// section and persists the result. fn returning an error aborts the save and
// discards all mutations.
func (o *Orchestrator) update(ctx context.Context, id string, fn func(p *project.Project) error) error {
	unlock := o.locks.lock(id)
	defer unlock()

	p, err := o.store.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	return o.store.Save(ctx, p)
}

// AddItem validates the candidate item and appends it as Pending. Rejection
// leaves the project untouched; nothing is submitted to the workflow engine.
func (o *Orchestrator) AddItem(ctx context.Context, projectID string, item *project.Item) error {
	return o.update(ctx, projectID, func(p *project.Project) error {
		if err := o.validator.ValidateAdd(ctx, p, item); err != nil {
			return err
		}
		item.State = project.StatePending
		return p.Append(item)
	})
}

// DeleteItems removes the items with the given ids and returns the removed
// items so callers can clean up their external side effects.
func (o *Orchestrator) DeleteItems(ctx context.Context, projectID string, keys []string) ([]*project.Item, error) {
	var removed []*project.Item
	err := o.update(ctx, projectID, func(p *project.Project) error {
		removed = p.Remove(keys)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// DeleteProject removes the project document inside its critical section so
// a concurrent item operation cannot resurrect it with a trailing save.
// cleanup runs on the loaded document before deletion; a cleanup error aborts
// the delete. The project's lock entry is discarded afterwards, which is safe
// because every critical section re-reads the document before writing.
func (o *Orchestrator) DeleteProject(ctx context.Context, id string, cleanup func(p *project.Project) error) error {
	unlock := o.locks.lock(id)
	defer unlock()

	p, err := o.store.FindOne(ctx, id)
	if err != nil {
		return err
	}
	if cleanup != nil {
		if err := cleanup(p); err != nil {
			return err
		}
	}
	if err := o.store.Delete(ctx, id); err != nil {
		return err
	}
	o.locks.forget(id)
	return nil
}

// Replicate submits the item's replication workflow according to its kind's
// dispatch mode. The Replicating transition is persisted before any
// long-running work so a crash mid-flight leaves the item visibly in flight.
func (o *Orchestrator) Replicate(ctx context.Context, projectID, itemID string) error {
	var (
		detached Kind
		input    any
		arn      string
	)
	err := o.update(ctx, projectID, func(p *project.Project) error {
		item, err := p.Find(itemID)
		if err != nil {
			return err
		}
		kind, err := o.kinds.Get(p.Type)
		if err != nil {
			return err
		}

		switch kind.Mode() {
		case ModeHandle:
			if err := item.Begin(o.now()); err != nil {
				return err
			}
			handle, err := o.runner.StartAsync(ctx, kind.Machine(), kind.Request(p, item))
			if err != nil {
				return err
			}
			item.ExecutionArn = handle
			arn, detached, input = handle, kind, nil
			o.log.Infof("Started replication of %s in project %s", item.ID, p.Name)
			return nil

		case ModeDetached:
			if err := item.Begin(o.now()); err != nil {
				return err
			}
			detached, input = kind, kind.Request(p, item)
			o.log.Infof("Scheduled replication of %s in project %s", item.ID, p.Name)
			return nil

		default:
			return fmt.Errorf("%s items are not replicated via a workflow", p.Type)
		}
	})
	if err != nil {
		return err
	}

	if detached != nil {
		kind := detached
		if arn != "" {
			o.pool.Submit(func() { o.watchHandle(projectID, itemID, kind, arn) })
		} else {
			o.pool.Submit(func() { o.runDetached(projectID, itemID, kind, input) })
		}
	}
	return nil
}

// Stop requests cancellation of the item's running execution and forces the
// item to Stopped. Only handle kinds can be stopped; detached and unmanaged
// kinds have no cancellable execution. Cancellation is best effort: a stale
// or finished handle is logged and swallowed because the operator's stop
// intent is authoritative. Stopping an already stopped item is a no-op.
func (o *Orchestrator) Stop(ctx context.Context, projectID, itemID string) error {
	return o.update(ctx, projectID, func(p *project.Project) error {
		item, err := p.Find(itemID)
		if err != nil {
			return err
		}
		kind, err := o.kinds.Get(p.Type)
		if err != nil {
			return err
		}
		if kind.Mode() != ModeHandle {
			return &project.PreconditionError{
				Reason: fmt.Sprintf("%s replication cannot be stopped once started", p.Type),
			}
		}
		if item.State == project.StateStopped {
			return nil
		}

		if item.ExecutionArn != "" {
			if err := o.runner.Stop(ctx, item.ExecutionArn); err != nil {
				o.log.Warningf("Unable to stop execution of %s: %v", item.ID, err)
			}
		}

		if _, err := item.Halt(o.now()); err != nil {
			return err
		}
		o.log.Infof("Stopped replication of %s in project %s", item.ID, p.Name)
		return nil
	})
}

// RunSync submits a workflow and blocks for its result, decoding the response
// payload into out.
func (o *Orchestrator) RunSync(ctx context.Context, machineName string, input, out any) error {
	output, err := o.runner.Execute(ctx, machineName, input)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(output), out); err != nil {
		return &machine.DeserializationError{Machine: machineName, Err: err}
	}
	return nil
}

// runDetached starts a fire-and-forget workflow on a pool worker, awaits it
// under the runner's long-running bound and records the outcome. No caller is
// listening after handoff, so failures are converted to the item's Failed
// state instead of propagating.
func (o *Orchestrator) runDetached(projectID, itemID string, kind Kind, input any) {
	ctx := context.Background()
	arn, err := o.runner.StartAsync(ctx, kind.Machine(), input)
	if err != nil {
		o.finalize(projectID, itemID, kind, "", err)
		return
	}
	output, execErr := o.runner.Await(ctx, kind.Machine(), arn)
	o.finalize(projectID, itemID, kind, output, execErr)
}

// watchHandle awaits a handle-based execution and records the outcome. An
// operator stop while the execution is in flight wins: the finalizing
// transition is rejected by the state machine and the item stays Stopped.
func (o *Orchestrator) watchHandle(projectID, itemID string, kind Kind, executionArn string) {
	output, execErr := o.runner.Await(context.Background(), kind.Machine(), executionArn)
	o.finalize(projectID, itemID, kind, output, execErr)
}

func (o *Orchestrator) finalize(projectID, itemID string, kind Kind, output string, execErr error) {
	ctx := context.Background()
	err := o.update(ctx, projectID, func(p *project.Project) error {
		item, err := p.Find(itemID)
		if err != nil {
			return err
		}

		if execErr != nil {
			o.log.Warningf("Replication of %s failed: %v", itemID, execErr)
			return item.Fail(o.now())
		}
		if err := kind.MergeResult(item, output); err != nil {
			o.log.Warningf("Replication of %s returned a malformed result: %v", itemID, err)
			return item.Fail(o.now())
		}
		return item.Complete(o.now())
	})
	if err != nil {
		o.log.Errorf("Unable to record replication outcome of %s: %v", itemID, err)
	}
}
