package state

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/pkg/constants"
)

// Project metadata keys.
const (
	MetadataSchemaVersion = "schema_version"
	MetadataMode          = "mode"
	MetadataBusinessModel = "business_model"
)

// ErrProjectNotFound is returned when no project has the requested id.
var ErrProjectNotFound = eris.New("project not found")

// Project is a named snapshot of the working state.
type Project struct {
	ProjectID    string                 `json:"projectId"`
	ProjectName  string                 `json:"projectName"`
	LastModified time.Time              `json:"lastModified"`
	BusinessData *business.BusinessData `json:"businessData,omitempty"`
	MarketData   *market.MarketData     `json:"marketData,omitempty"`
	Metadata     map[string]string      `json:"metadata,omitempty"`
}

func (p Project) clone() Project {
	p.BusinessData = p.BusinessData.Clone()
	p.MarketData = p.MarketData.Clone()
	if p.Metadata != nil {
		metadata := make(map[string]string, len(p.Metadata))
		for k, v := range p.Metadata {
			metadata[k] = v
		}
		p.Metadata = metadata
	}
	return p
}

// SaveProject snapshots the current business case and market analysis under
// name. Saving under an existing name overwrites that project and keeps its
// id.
func (s *Store) SaveProject(ctx context.Context, name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, eris.New("state: project name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	project := Project{
		ProjectName:  name,
		LastModified: s.now().UTC(),
		BusinessData: s.business.Clone(),
		MarketData:   s.market.Clone(),
		Metadata: map[string]string{
			MetadataSchemaVersion: constants.SchemaVersion,
			MetadataMode:          string(s.mode),
		},
	}
	if s.business != nil {
		project.Metadata[MetadataBusinessModel] = string(s.business.Meta.BusinessModel)
	}

	projects := make([]Project, 0, len(s.projects)+1)
	replaced := false
	for _, p := range s.projects {
		if p.ProjectName == name {
			project.ProjectID = p.ProjectID
			projects = append(projects, project)
			replaced = true
			continue
		}
		projects = append(projects, p)
	}
	if !replaced {
		project.ProjectID = s.newID()
		projects = append(projects, project)
	}

	if err := s.saveJSON(ctx, KeyProjects, projects); err != nil {
		return Project{}, err
	}
	s.projects = projects
	s.logger.Info("project saved",
		zap.String("op", "state.SaveProject"),
		zap.String("projectId", project.ProjectID),
		zap.String("projectName", name),
		zap.Bool("replaced", replaced),
	)
	return project.clone(), nil
}

// ListProjects returns copies of the saved projects in save order.
func (s *Store) ListProjects() []Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Project, len(s.projects))
	for i, p := range s.projects {
		out[i] = p.clone()
	}
	return out
}

// OpenProject makes a saved project the working state.
func (s *Store) OpenProject(ctx context.Context, id string) (Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return Project{}, eris.Wrapf(ErrProjectNotFound, "state: open project %s", id)
	}
	project := s.projects[i].clone()

	if err := s.replaceDocument(ctx, KeyBusinessData, project.BusinessData); err != nil {
		return Project{}, err
	}
	if err := s.replaceDocument(ctx, KeyMarketData, project.MarketData); err != nil {
		s.rollback(ctx, "state.OpenProject", KeyBusinessData, s.business)
		return Project{}, err
	}
	s.business = project.BusinessData.Clone()
	s.market = project.MarketData.Clone()

	s.logger.Info("project opened",
		zap.String("op", "state.OpenProject"),
		zap.String("projectId", id),
		zap.String("projectName", project.ProjectName),
	)
	return project, nil
}

// DeleteProject removes a saved project.
func (s *Store) DeleteProject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.projectIndex(id)
	if i < 0 {
		return eris.Wrapf(ErrProjectNotFound, "state: delete project %s", id)
	}
	projects := make([]Project, 0, len(s.projects)-1)
	projects = append(projects, s.projects[:i]...)
	projects = append(projects, s.projects[i+1:]...)

	if err := s.saveJSON(ctx, KeyProjects, projects); err != nil {
		return err
	}
	s.projects = projects
	return nil
}

func (s *Store) projectIndex(id string) int {
	for i, p := range s.projects {
		if p.ProjectID == id {
			return i
		}
	}
	return -1
}

// replaceDocument saves v under key, or removes key when v is nil.
func (s *Store) replaceDocument(ctx context.Context, key string, v any) error {
	switch doc := v.(type) {
	case *business.BusinessData:
		if doc == nil {
			return eris.Wrapf(s.port.Remove(ctx, key), "state: remove %s", key)
		}
	case *market.MarketData:
		if doc == nil {
			return eris.Wrapf(s.port.Remove(ctx, key), "state: remove %s", key)
		}
	}
	return s.saveJSON(ctx, key, v)
}
