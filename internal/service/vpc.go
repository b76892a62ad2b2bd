package service

import (
	"context"
	"fmt"

	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
)

// LambdaInvoker is the narrow contract of the helper function invoker.
type LambdaInvoker interface {
	Invoke(ctx context.Context, function string, payload any) (string, error)
	InvokeBool(ctx context.Context, function string, payload any) (bool, error)
}

// WatchStore manages the derived VPC change-capture records.
type WatchStore interface {
	DeleteByVpc(ctx context.Context, vpcID string) error
	Sweep(ctx context.Context, referenced map[string]bool) error
}

// VpcFunctions names the helper Lambda functions of the VPC kind.
type VpcFunctions struct {
	CreateProject string
	DeleteVpc     string
	WatchReady    string
}

type deleteVpcRequest struct {
	VpcID  string `json:"vpcId"`
	Region string `json:"region"`
}

// VpcHooks implements the VPC kind's side effects: project creation is
// delegated to the factory function, and teardown removes the replicated
// target VPCs and the watch records of the sources.
type VpcHooks struct {
	NopHooks
	invoker   LambdaInvoker
	watch     WatchStore
	store     project.Store
	functions VpcFunctions
	log       *logger.Logger
}

// NewVpcHooks creates the VPC side-effect hooks.
func NewVpcHooks(invoker LambdaInvoker, watch WatchStore, store project.Store, functions VpcFunctions, log *logger.Logger) *VpcHooks {
	return &VpcHooks{
		invoker:   invoker,
		watch:     watch,
		store:     store,
		functions: functions,
		log:       log,
	}
}

// Create delegates project creation to the VPC project factory function,
// which persists the document itself.
func (h *VpcHooks) Create(ctx context.Context, p *project.Project) (bool, error) {
	if _, err := h.invoker.Invoke(ctx, h.functions.CreateProject, p); err != nil {
		return false, fmt.Errorf("failed to create VPC project %s: %w", p.Name, err)
	}
	return true, nil
}

// Cleanup deletes every replicated target VPC, drops the watch records of the
// project's source VPCs and sweeps records no longer referenced by any other
// VPC project.
func (h *VpcHooks) Cleanup(ctx context.Context, p *project.Project) error {
	if err := h.teardown(ctx, p, p.Items()); err != nil {
		return err
	}

	remaining, err := h.store.FindByType(ctx, project.ComponentVPC)
	if err != nil {
		return err
	}
	referenced := make(map[string]bool)
	for _, other := range remaining {
		if other.ID == p.ID {
			continue
		}
		for _, item := range other.Items() {
			referenced[item.Source] = true
		}
	}
	return h.watch.Sweep(ctx, referenced)
}

// ItemsRemoved deletes the replicated target VPCs and watch records of the
// removed items.
func (h *VpcHooks) ItemsRemoved(ctx context.Context, p *project.Project, removed []*project.Item) error {
	return h.teardown(ctx, p, removed)
}

func (h *VpcHooks) teardown(ctx context.Context, p *project.Project, items []*project.Item) error {
	for _, item := range items {
		if item.Target != "" {
			req := deleteVpcRequest{VpcID: item.Target, Region: p.TargetRegion.String()}
			if _, err := h.invoker.Invoke(ctx, h.functions.DeleteVpc, req); err != nil {
				return fmt.Errorf("failed to delete VPC %s: %w", item.Target, err)
			}
			h.log.Infof("Deleted replicated VPC %s in %s", item.Target, p.TargetRegion)
		}
		if err := h.watch.DeleteByVpc(ctx, item.Source); err != nil {
			return err
		}
	}
	return nil
}

// Prober answers the continuous-capture readiness probe for a region.
type Prober struct {
	invoker  LambdaInvoker
	function string
}

// NewProber creates a readiness prober backed by the given function.
func NewProber(invoker LambdaInvoker, function string) *Prober {
	return &Prober{invoker: invoker, function: function}
}

// WatchReady reports whether the region is prepared for continuous VPC
// replication.
func (p *Prober) WatchReady(ctx context.Context, region project.Region) (bool, error) {
	return p.invoker.InvokeBool(ctx, p.function, map[string]string{"region": region.String()})
}
