package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
	"github.com/regionsync/regionsync/internal/store"
)

// fakeInvoker records Lambda invocations and replies from a canned map.
type fakeInvoker struct {
	mu        sync.Mutex
	calls     []invocation
	responses map[string]string
	errs      map[string]error
}

type invocation struct {
	function string
	payload  any
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeInvoker) Invoke(_ context.Context, function string, payload any) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, invocation{function: function, payload: payload})
	f.mu.Unlock()
	if err := f.errs[function]; err != nil {
		return "", err
	}
	return f.responses[function], nil
}

func (f *fakeInvoker) InvokeBool(ctx context.Context, function string, payload any) (bool, error) {
	out, err := f.Invoke(ctx, function, payload)
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

func (f *fakeInvoker) callsTo(function string) []invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	var calls []invocation
	for _, c := range f.calls {
		if c.function == function {
			calls = append(calls, c)
		}
	}
	return calls
}

type fakeWatch struct {
	deletedVpcs []string
	sweptWith   map[string]bool
}

func (f *fakeWatch) DeleteByVpc(_ context.Context, vpcID string) error {
	f.deletedVpcs = append(f.deletedVpcs, vpcID)
	return nil
}

func (f *fakeWatch) Sweep(_ context.Context, referenced map[string]bool) error {
	f.sweptWith = referenced
	return nil
}

// fakeSecrets implements both the credential cleanup and db-password
// contracts over a plain map.
type fakeSecrets struct {
	values             map[string]string
	deletedCredentials []string
}

func newFakeSecrets() *fakeSecrets {
	return &fakeSecrets{values: map[string]string{}}
}

func (f *fakeSecrets) SaveSecret(_ context.Context, id, value string) error {
	f.values[id] = value
	return nil
}

func (f *fakeSecrets) DeleteSecret(_ context.Context, id string) error {
	delete(f.values, id)
	return nil
}

func (f *fakeSecrets) DbSecretID(projectID string, side project.Side, dbID string) string {
	return fmt.Sprintf("drp/%s/%s/db/%s", projectID, side, dbID)
}

func (f *fakeSecrets) DeleteCredentials(_ context.Context, projectID string) error {
	f.deletedCredentials = append(f.deletedCredentials, projectID)
	return nil
}

type fakeRunner struct {
	startArn string
	output   string
	err      error
	executed []string
}

func (f *fakeRunner) Execute(_ context.Context, machine string, _ any) (string, error) {
	f.executed = append(f.executed, machine)
	return f.output, f.err
}

func (f *fakeRunner) StartAsync(context.Context, string, any) (string, error) {
	return f.startArn, f.err
}

func (f *fakeRunner) Await(context.Context, string, string) (string, error) {
	return f.output, f.err
}

func (f *fakeRunner) Stop(context.Context, string) error { return f.err }

type openInventory struct{}

func (openInventory) BucketRegion(context.Context, string) (project.Region, error) {
	return "", fmt.Errorf("not in this test")
}
func (openInventory) HasTable(context.Context, string) (bool, error)      { return true, nil }
func (openInventory) HasVpc(context.Context, string) (bool, error)        { return true, nil }
func (openInventory) HasInstance(context.Context, string) (bool, error)   { return true, nil }
func (openInventory) HasDBInstance(context.Context, string) (bool, error) { return true, nil }

type openResolver struct{}

func (openResolver) InventoryFor(context.Context, *project.Project, project.Side) (replicator.Inventory, error) {
	return openInventory{}, nil
}

func newTestOrchestrator(projectStore project.Store, runner replicator.WorkflowRunner) (*replicator.Orchestrator, *replicator.Pool) {
	kinds := replicator.NewRegistry()
	_ = kinds.Register(
		replicator.NewDynamoKind(openResolver{}),
		replicator.NewDbDumpKind(project.ComponentDbDumpMySql, openResolver{}),
		replicator.NewDbDumpKind(project.ComponentDbDumpOracle, openResolver{}),
	)
	pool := replicator.NewPool(1)
	return replicator.New(projectStore, runner, kinds, pool, logger.New(false)), pool
}

func newTestStore() *store.Memory {
	return store.NewMemory()
}
