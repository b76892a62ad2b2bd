package server

import (
	"fmt"
	"net/http"

	"github.com/regionsync/regionsync/internal/project"
	"github.com/regionsync/regionsync/internal/secret"
)

type createProjectRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	SourceRegion string `json:"sourceRegion"`
	TargetRegion string `json:"targetRegion"`
}

type addItemRequest struct {
	ID             string `json:"id,omitempty"`
	Source         string `json:"source"`
	Target         string `json:"target"`
	Cidr           string `json:"cidr,omitempty"`
	Continuous     bool   `json:"continuous,omitempty"`
	SourcePassword string `json:"sourcePassword,omitempty"`
	TargetPassword string `json:"targetPassword,omitempty"`
}

type deleteItemsRequest struct {
	Keys []string `json:"keys"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	if req.Name == "" || req.Type == "" || req.SourceRegion == "" || req.TargetRegion == "" {
		writeBadRequest(w, "name, type, sourceRegion and targetRegion are required")
		return
	}

	p, err := s.projects.Create(r.Context(), req.Name, project.Component(req.Type),
		project.Region(req.SourceRegion), project.Region(req.TargetRegion))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("type")
	if kind == "" {
		writeBadRequest(w, "type query parameter is required")
		return
	}

	projects, err := s.projects.FindByType(r.Context(), project.Component(kind))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.FindOne(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSaveCredential(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r.PathValue("side"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	var cred secret.Credential
	if err := decode(r, &cred); err != nil {
		writeError(w, s.log, err)
		return
	}

	p, err := s.projects.FindOne(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	if err := s.credentials.SaveCredential(r.Context(), p, side, &cred); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	if req.Source == "" || req.Target == "" {
		writeBadRequest(w, "source and target are required")
		return
	}

	projectID := r.PathValue("id")
	p, err := s.projects.FindOne(r.Context(), projectID)
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	item := project.NewItem(req.Source, req.Target)
	if req.ID != "" {
		item.ID = req.ID
	}
	item.Cidr = req.Cidr
	item.Continuous = req.Continuous

	switch p.Type {
	case project.ComponentDbDumpMySql, project.ComponentDbDumpOracle:
		err = s.dbdump.AddDatabase(r.Context(), projectID, item, req.SourcePassword, req.TargetPassword)
	default:
		err = s.projects.AddItem(r.Context(), projectID, item)
	}
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleDeleteItems(w http.ResponseWriter, r *http.Request) {
	var req deleteItemsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}
	if len(req.Keys) == 0 {
		writeBadRequest(w, "keys are required")
		return
	}

	if err := s.projects.DeleteItems(r.Context(), r.PathValue("id"), req.Keys); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReplicate(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Replicate(r.Context(), r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Stop(r.Context(), r.PathValue("id"), r.PathValue("itemID")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDatabases(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r.URL.Query().Get("side"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	databases, err := s.dbdump.GetDatabases(r.Context(), r.PathValue("id"), r.PathValue("itemID"), side)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, databases)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	side, err := parseSide(r.URL.Query().Get("side"))
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	ctx := r.Context()
	projectID := r.PathValue("id")

	var result any
	switch resource := r.PathValue("resource"); resource {
	case "buckets":
		result, err = s.catalog.Buckets(ctx, projectID, side)
	case "tables":
		result, err = s.catalog.Tables(ctx, projectID, side)
	case "vpcs":
		result, err = s.catalog.Vpcs(ctx, projectID, side)
	case "instances":
		result, err = s.catalog.Instances(ctx, projectID, side)
	case "databases":
		result, err = s.catalog.DBInstances(ctx, projectID, side)
	case "regions":
		result, err = s.catalog.Regions(ctx, projectID, side)
	case "instance-types":
		result, err = s.catalog.InstanceTypes(ctx, projectID, side)
	case "security-groups":
		vpcID := r.URL.Query().Get("vpcId")
		if vpcID == "" {
			writeBadRequest(w, "vpcId query parameter is required")
			return
		}
		result, err = s.catalog.SecurityGroups(ctx, projectID, side, vpcID)
	default:
		writeBadRequest(w, fmt.Sprintf("unknown inventory resource %q", resource))
		return
	}
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseSide(value string) (project.Side, error) {
	switch value {
	case "source":
		return project.SideSource, nil
	case "target":
		return project.SideTarget, nil
	default:
		return "", fmt.Errorf("side must be source or target, got %q", value)
	}
}
