// Package machine submits serialized jobs to the external workflow engine.
package machine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sfn/types"

	"github.com/regionsync/regionsync/internal/logger"
)

// Runner drives AWS Step Functions state machines by name. Synchronous
// execution polls until the engine reports a terminal status; asynchronous
// execution returns the execution ARN as a cancellable handle. Synchronous
// executions are bounded by a short timeout suitable for request handling,
// awaited background executions by a much larger one sized for data
// movement.
type Runner struct {
	client       *sfn.Client
	log          *logger.Logger
	pollInterval time.Duration
	syncTimeout  time.Duration
	runTimeout   time.Duration

	mu   sync.Mutex
	arns map[string]string
}

// NewRunner creates a workflow runner polling every pollInterval. Execute is
// bounded by syncTimeout, Await by runTimeout.
func NewRunner(client *sfn.Client, log *logger.Logger, pollInterval, syncTimeout, runTimeout time.Duration) *Runner {
	return &Runner{
		client:       client,
		log:          log,
		pollInterval: pollInterval,
		syncTimeout:  syncTimeout,
		runTimeout:   runTimeout,
		arns:         make(map[string]string),
	}
}

// Execute starts the named state machine and blocks until it finishes, within
// the runner's synchronous timeout. It returns the raw serialized output
// payload.
func (r *Runner) Execute(ctx context.Context, machine string, input any) (string, error) {
	executionArn, err := r.start(ctx, machine, input)
	if err != nil {
		return "", err
	}
	return r.await(ctx, machine, executionArn, r.syncTimeout)
}

// Await blocks until the given execution finishes, within the runner's
// long-running timeout, and returns its raw output payload.
func (r *Runner) Await(ctx context.Context, machine, executionArn string) (string, error) {
	return r.await(ctx, machine, executionArn, r.runTimeout)
}

func (r *Runner) await(ctx context.Context, machine, executionArn string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return "", &WorkflowError{Machine: machine, Cause: "execution timed out", Err: ctx.Err()}
		case <-ticker.C:
		}

		out, err := r.client.DescribeExecution(ctx, &sfn.DescribeExecutionInput{
			ExecutionArn: aws.String(executionArn),
		})
		if err != nil {
			return "", &WorkflowError{Machine: machine, Cause: "unable to describe execution", Err: err}
		}

		switch out.Status {
		case types.ExecutionStatusRunning:
			continue
		case types.ExecutionStatusSucceeded:
			return aws.ToString(out.Output), nil
		default:
			return "", &WorkflowError{Machine: machine, Cause: fmt.Sprintf("execution ended %s", out.Status)}
		}
	}
}

// StartAsync starts the named state machine and returns its execution ARN
// without waiting for completion.
func (r *Runner) StartAsync(ctx context.Context, machine string, input any) (string, error) {
	return r.start(ctx, machine, input)
}

// Stop requests cancellation of a running execution by handle.
func (r *Runner) Stop(ctx context.Context, executionArn string) error {
	_, err := r.client.StopExecution(ctx, &sfn.StopExecutionInput{
		ExecutionArn: aws.String(executionArn),
	})
	if err != nil {
		return &CancellationError{Execution: executionArn, Err: err}
	}
	return nil
}

func (r *Runner) start(ctx context.Context, machine string, input any) (string, error) {
	arn, err := r.resolve(ctx, machine)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return "", &WorkflowError{Machine: machine, Cause: "unable to encode request", Err: err}
	}

	r.log.Debugf("Start execution of %s", machine)
	out, err := r.client.StartExecution(ctx, &sfn.StartExecutionInput{
		StateMachineArn: aws.String(arn),
		Input:           aws.String(string(payload)),
	})
	if err != nil {
		return "", &WorkflowError{Machine: machine, Cause: "unable to start execution", Err: err}
	}
	return aws.ToString(out.ExecutionArn), nil
}

// resolve maps a state machine name to its ARN, caching lookups.
func (r *Runner) resolve(ctx context.Context, machine string) (string, error) {
	r.mu.Lock()
	arn, ok := r.arns[machine]
	r.mu.Unlock()
	if ok {
		return arn, nil
	}

	paginator := sfn.NewListStateMachinesPaginator(r.client, &sfn.ListStateMachinesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return "", &WorkflowError{Machine: machine, Cause: "unable to list state machines", Err: err}
		}
		for _, sm := range page.StateMachines {
			if aws.ToString(sm.Name) == machine {
				r.mu.Lock()
				r.arns[machine] = aws.ToString(sm.StateMachineArn)
				r.mu.Unlock()
				return aws.ToString(sm.StateMachineArn), nil
			}
		}
	}
	return "", &WorkflowError{Machine: machine, Cause: "state machine not found"}
}
