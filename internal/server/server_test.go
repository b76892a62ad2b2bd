package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/regionsync/regionsync/internal/inventory"
	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/replicator"
	"github.com/regionsync/regionsync/internal/secret"
	"github.com/regionsync/regionsync/internal/service"
	"github.com/regionsync/regionsync/internal/store"
)

type stubRunner struct{}

func (stubRunner) Execute(context.Context, string, any) (string, error)    { return `[]`, nil }
func (stubRunner) StartAsync(context.Context, string, any) (string, error) { return "arn:exec", nil }
func (stubRunner) Await(context.Context, string, string) (string, error)   { return "", nil }
func (stubRunner) Stop(context.Context, string) error                      { return nil }

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

type stubCatalog struct {
	regions []string
}

func (c *stubCatalog) Buckets(context.Context, string, project.Side) ([]inventory.Bucket, error) {
	return nil, nil
}
func (c *stubCatalog) Tables(context.Context, string, project.Side) ([]inventory.Table, error) {
	return nil, nil
}
func (c *stubCatalog) Vpcs(context.Context, string, project.Side) ([]inventory.Vpc, error) {
	return nil, nil
}
func (c *stubCatalog) Instances(context.Context, string, project.Side) ([]inventory.Instance, error) {
	return nil, nil
}
func (c *stubCatalog) DBInstances(context.Context, string, project.Side) ([]inventory.DBInstance, error) {
	return nil, nil
}
func (c *stubCatalog) Regions(context.Context, string, project.Side) ([]string, error) {
	return c.regions, nil
}
func (c *stubCatalog) InstanceTypes(context.Context, string, project.Side) ([]inventory.InstanceType, error) {
	return nil, nil
}
func (c *stubCatalog) SecurityGroups(context.Context, string, project.Side, string) ([]inventory.SecurityGroup, error) {
	return nil, nil
}

type stubCredentials struct {
	saved map[project.Side]*secret.Credential
}

func (c *stubCredentials) SaveCredential(_ context.Context, _ *project.Project, side project.Side, cred *secret.Credential) error {
	if c.saved == nil {
		c.saved = map[project.Side]*secret.Credential{}
	}
	c.saved[side] = cred
	return nil
}

type noopSecrets struct{}

func (noopSecrets) SaveSecret(context.Context, string, string) error { return nil }
func (noopSecrets) DeleteSecret(context.Context, string) error       { return nil }
func (noopSecrets) DbSecretID(projectID string, side project.Side, dbID string) string {
	return fmt.Sprintf("drp/%s/%s/db/%s", projectID, side, dbID)
}
func (noopSecrets) DeleteCredentials(context.Context, string) error { return nil }

type testAPI struct {
	handler     http.Handler
	store       *store.Memory
	credentials *stubCredentials
	pool        *replicator.Pool
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	log := logger.New(false)
	projectStore := store.NewMemory()

	kinds := replicator.NewRegistry()
	require.NoError(t, kinds.Register(
		replicator.NewDynamoKind(openResolver{}),
		replicator.NewDbDumpKind(project.ComponentDbDumpMySql, openResolver{}),
	))
	pool := replicator.NewPool(1)
	t.Cleanup(pool.Close)
	orch := replicator.New(projectStore, stubRunner{}, kinds, pool, log)

	secrets := noopSecrets{}
	projects := service.NewProjects(projectStore, orch, secrets, log)
	dbdump := service.NewDbDump(projectStore, orch, orch, secrets)
	credentials := &stubCredentials{}

	srv := New(":0", projects, dbdump, &stubCatalog{regions: []string{"us-east-1"}}, credentials, log)
	return &testAPI{
		handler:     srv.routes(),
		store:       projectStore,
		credentials: credentials,
		pool:        pool,
	}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func TestCreateProject(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/projects", map[string]string{
		"name":         "analytics",
		"type":         "DynamoDB",
		"sourceRegion": "us-east-1",
		"targetRegion": "eu-west-1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, project.ComponentDynamoDB, created.Type)

	t.Run("missing fields", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/projects", map[string]string{"name": "x"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/projects", bytes.NewBufferString("{"))
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetProject(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	require.NoError(t, api.store.Save(context.Background(), p))

	rec := api.do(t, http.MethodGet, "/projects/"+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("unknown id maps to 404", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/projects/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListProjects(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	require.NoError(t, api.store.Save(context.Background(), p))

	rec := api.do(t, http.MethodGet, "/projects?type=DynamoDB", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var projects []project.Project
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projects))
	assert.Len(t, projects, 1)

	t.Run("type is required", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/projects", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAddItem(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	require.NoError(t, api.store.Save(context.Background(), p))

	rec := api.do(t, http.MethodPost, "/projects/"+p.ID+"/items", map[string]any{
		"source": "orders",
		"target": "orders-dr",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("duplicate maps to 400", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/projects/"+p.ID+"/items", map[string]any{
			"source": "orders",
			"target": "orders-dr",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStopItem(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	item := project.NewItem("orders", "orders-dr")
	require.NoError(t, p.Append(item))
	require.NoError(t, api.store.Save(context.Background(), p))

	// a pending item has nothing to stop
	rec := api.do(t, http.MethodPost, "/projects/"+p.ID+"/items/"+item.ID+"/stop", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSaveCredential(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	require.NoError(t, api.store.Save(context.Background(), p))

	rec := api.do(t, http.MethodPut, "/projects/"+p.ID+"/credentials/target", map[string]string{
		"accessKeyId":     "AKIA123",
		"secretAccessKey": "shhh",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Contains(t, api.credentials.saved, project.SideTarget)
	assert.Equal(t, "AKIA123", api.credentials.saved[project.SideTarget].AccessKeyID)

	t.Run("invalid side", func(t *testing.T) {
		rec := api.do(t, http.MethodPut, "/projects/"+p.ID+"/credentials/middle", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestInventoryRoutes(t *testing.T) {
	api := newTestAPI(t)
	p := project.New("demo", project.ComponentDynamoDB, "us-east-1", "eu-west-1")
	require.NoError(t, api.store.Save(context.Background(), p))

	rec := api.do(t, http.MethodGet, "/projects/"+p.ID+"/inventory/regions?side=source", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var regions []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regions))
	assert.Equal(t, []string{"us-east-1"}, regions)

	t.Run("side is required", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/projects/"+p.ID+"/inventory/regions", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown resource", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/projects/"+p.ID+"/inventory/wombats?side=source", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("security groups need a vpc", func(t *testing.T) {
		rec := api.do(t, http.MethodGet, "/projects/"+p.ID+"/inventory/security-groups?side=source", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
