package replicator

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionsync/regionsync/internal/machine"
	"github.com/regionsync/regionsync/internal/project"
)

func TestVpcKindValidate(t *testing.T) {
	ctx := context.Background()
	inv := &fakeInventory{vpcs: map[string]bool{"vpc-1": true}}
	resolver := &fakeResolver{inv: inv}
	p := project.New("demo", project.ComponentVPC, "us-east-1", "eu-west-1")

	t.Run("source vpc present", func(t *testing.T) {
		kind := NewVpcKind(resolver, &fakeProber{ready: true})
		item := project.NewItem("vpc-1", "")
		item.Cidr = "10.1.0.0/16"
		require.NoError(t, kind.Validate(ctx, p, item))
	})

	t.Run("source vpc in the wrong region", func(t *testing.T) {
		kind := NewVpcKind(resolver, &fakeProber{ready: true})
		item := project.NewItem("vpc-9", "")

		err := kind.Validate(ctx, p, item)
		var mismatch *project.RegionMismatchError
		require.ErrorAs(t, err, &mismatch)
		assert.Equal(t, project.SideSource, mismatch.Side)
	})

	t.Run("continuous mode requires readiness", func(t *testing.T) {
		kind := NewVpcKind(resolver, &fakeProber{ready: false})
		item := project.NewItem("vpc-1", "")
		item.Continuous = true

		err := kind.Validate(ctx, p, item)
		var pre *project.PreconditionError
		require.ErrorAs(t, err, &pre)
		assert.Contains(t, pre.Reason, "us-east-1")
	})

	t.Run("continuous mode when ready", func(t *testing.T) {
		kind := NewVpcKind(resolver, &fakeProber{ready: true})
		item := project.NewItem("vpc-1", "")
		item.Continuous = true
		require.NoError(t, kind.Validate(ctx, p, item))
	})
}

func TestVpcKindRequest(t *testing.T) {
	kind := NewVpcKind(&fakeResolver{inv: &fakeInventory{}}, &fakeProber{})
	p := project.New("demo", project.ComponentVPC, "us-east-1", "eu-west-1")
	item := project.NewItem("vpc-1", "")
	item.Cidr = "10.1.0.0/16"
	item.Continuous = true

	body, err := json.Marshal(kind.Request(p, item))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"cidr": "10.1.0.0/16",
		"continuous": true,
		"source": {"vpcId": "vpc-1", "region": "us-east-1"},
		"target": {"region": "eu-west-1"}
	}`, string(body))
}

func TestVpcKindMergeResult(t *testing.T) {
	kind := NewVpcKind(&fakeResolver{inv: &fakeInventory{}}, &fakeProber{})

	t.Run("records the created vpc", func(t *testing.T) {
		item := project.NewItem("vpc-1", "")
		require.NoError(t, kind.MergeResult(item, `"vpc-2"`))
		assert.Equal(t, "vpc-2", item.Target)
	})

	t.Run("malformed output", func(t *testing.T) {
		item := project.NewItem("vpc-1", "")
		err := kind.MergeResult(item, `{{`)
		var deser *machine.DeserializationError
		require.ErrorAs(t, err, &deser)
		assert.Empty(t, item.Target)
	})
}
