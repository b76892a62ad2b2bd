package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
)

func vpcProject(t *testing.T, name string, sources ...string) *project.Project {
	t.Helper()
	p := project.New(name, project.ComponentVPC, "us-east-1", "eu-west-1")
	for _, source := range sources {
		require.NoError(t, p.Append(project.NewItem(source, "")))
	}
	return p
}

func TestVpcHooksCleanup(t *testing.T) {
	ctx := context.Background()
	projectStore := newTestStore()
	invoker := newFakeInvoker()
	watch := &fakeWatch{}
	hooks := NewVpcHooks(invoker, watch, projectStore, VpcFunctions{
		CreateProject: "CreateVpcProject",
		DeleteVpc:     "DeleteVpc",
	}, logger.New(false))

	// the project under deletion: one replicated item, one still pending
	p := vpcProject(t, "doomed", "vpc-a", "vpc-b")
	p.Items()[0].Target = "vpc-a-dr"
	require.NoError(t, projectStore.Save(ctx, p))

	// a surviving project still referencing vpc-b
	other := vpcProject(t, "survivor", "vpc-b")
	require.NoError(t, projectStore.Save(ctx, other))

	require.NoError(t, hooks.Cleanup(ctx, p))

	deletes := invoker.callsTo("DeleteVpc")
	require.Len(t, deletes, 1, "only replicated items have a target VPC to tear down")
	req, ok := deletes[0].payload.(deleteVpcRequest)
	require.True(t, ok)
	assert.Equal(t, "vpc-a-dr", req.VpcID)
	assert.Equal(t, "eu-west-1", req.Region)

	assert.Equal(t, []string{"vpc-a", "vpc-b"}, watch.deletedVpcs)

	require.NotNil(t, watch.sweptWith)
	assert.True(t, watch.sweptWith["vpc-b"], "the survivor's VPC must stay referenced")
	assert.False(t, watch.sweptWith["vpc-a"])
}

func TestVpcHooksItemsRemoved(t *testing.T) {
	ctx := context.Background()
	invoker := newFakeInvoker()
	watch := &fakeWatch{}
	hooks := NewVpcHooks(invoker, watch, newTestStore(), VpcFunctions{
		DeleteVpc: "DeleteVpc",
	}, logger.New(false))

	p := vpcProject(t, "demo")
	removed := project.NewItem("vpc-src", "")
	removed.Target = "vpc-dst"

	require.NoError(t, hooks.ItemsRemoved(ctx, p, []*project.Item{removed}))

	require.Len(t, invoker.callsTo("DeleteVpc"), 1)
	assert.Equal(t, []string{"vpc-src"}, watch.deletedVpcs)
	assert.Nil(t, watch.sweptWith, "removing items must not sweep other projects' records")
}

func TestProber(t *testing.T) {
	invoker := newFakeInvoker()
	invoker.responses["CheckWatchReady"] = "true"
	prober := NewProber(invoker, "CheckWatchReady")

	ready, err := prober.WatchReady(context.Background(), "us-east-1")
	require.NoError(t, err)
	assert.True(t, ready)

	calls := invoker.callsTo("CheckWatchReady")
	require.Len(t, calls, 1)
	assert.Equal(t, map[string]string{"region": "us-east-1"}, calls[0].payload)
}
