// Package server exposes the HTTP API of the regionsync portal.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/regionsync/regionsync/internal/inventory"
	"github.com/regionsync/regionsync/internal/logger"
	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/secret"
	"github.com/regionsync/regionsync/internal/service"
)

// CredentialStore saves the explicit credential of one project side.
type CredentialStore interface {
	SaveCredential(ctx context.Context, p *project.Project, side project.Side, cred *secret.Credential) error
}

// Catalog lists the live cloud resources of a project side.
type Catalog interface {
	Buckets(ctx context.Context, projectID string, side project.Side) ([]inventory.Bucket, error)
	Tables(ctx context.Context, projectID string, side project.Side) ([]inventory.Table, error)
	Vpcs(ctx context.Context, projectID string, side project.Side) ([]inventory.Vpc, error)
	Instances(ctx context.Context, projectID string, side project.Side) ([]inventory.Instance, error)
	DBInstances(ctx context.Context, projectID string, side project.Side) ([]inventory.DBInstance, error)
	Regions(ctx context.Context, projectID string, side project.Side) ([]string, error)
	InstanceTypes(ctx context.Context, projectID string, side project.Side) ([]inventory.InstanceType, error)
	SecurityGroups(ctx context.Context, projectID string, side project.Side, vpcID string) ([]inventory.SecurityGroup, error)
}

// Server serves the portal API over HTTP.
type Server struct {
	projects    *service.Projects
	dbdump      *service.DbDump
	catalog     Catalog
	credentials CredentialStore
	log         *logger.Logger
	httpServer  *http.Server
}

// New creates a server bound to the given address.
func New(addr string, projects *service.Projects, dbdump *service.DbDump, catalog Catalog, credentials CredentialStore, log *logger.Logger) *Server {
	s := &Server{
		projects:    projects,
		dbdump:      dbdump,
		catalog:     catalog,
		credentials: credentials,
		log:         log,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /projects", s.handleCreateProject)
	mux.HandleFunc("GET /projects", s.handleListProjects)
	mux.HandleFunc("GET /projects/{id}", s.handleGetProject)
	mux.HandleFunc("DELETE /projects/{id}", s.handleDeleteProject)
	mux.HandleFunc("PUT /projects/{id}/credentials/{side}", s.handleSaveCredential)

	mux.HandleFunc("POST /projects/{id}/items", s.handleAddItem)
	mux.HandleFunc("DELETE /projects/{id}/items", s.handleDeleteItems)
	mux.HandleFunc("POST /projects/{id}/items/{itemID}/replicate", s.handleReplicate)
	mux.HandleFunc("POST /projects/{id}/items/{itemID}/start", s.handleReplicate)
	mux.HandleFunc("POST /projects/{id}/items/{itemID}/stop", s.handleStop)
	mux.HandleFunc("GET /projects/{id}/items/{itemID}/databases", s.handleGetDatabases)

	mux.HandleFunc("GET /projects/{id}/inventory/{resource}", s.handleInventory)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return mux
}

// Start serves requests until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Infof("Listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
