package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/medflow/payroll-backend/internal/overtime/domain"
	"github.com/medflow/payroll-backend/pkg/database"
	"github.com/medflow/payroll-backend/pkg/errors"
)

// StateCatalog maps workflow states to their catalog ids and back
type StateCatalog struct {
	ids    map[domain.State]string
	states map[string]domain.State
}

// NewStateCatalog builds a catalog from state -> id pairs
func NewStateCatalog(ids map[domain.State]string) StateCatalog {
	c := StateCatalog{ids: ids, states: make(map[string]domain.State, len(ids))}
	for s, id := range ids {
		c.states[id] = s
	}
	return c
}

// ID returns the catalog id of s
func (c StateCatalog) ID(s domain.State) string {
	return c.ids[s]
}

// State resolves a catalog id
func (c StateCatalog) State(id string) (domain.State, bool) {
	s, ok := c.states[id]
	return s, ok
}

// Resolve accepts either a catalog id or a state name
func (c StateCatalog) Resolve(idOrName string) (domain.State, bool) {
	if s, ok := c.states[idOrName]; ok {
		return s, true
	}
	if s, ok := domain.ParseState(idOrName); ok {
		if _, known := c.ids[s]; known {
			return s, true
		}
	}
	return "", false
}

type catalogRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// CatalogRepository resolves the catalog rows the engine requires
type CatalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *database.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// OvertimeTypeIDs returns the ids of the diurnal and nocturnal overtime types
func (r *CatalogRepository) OvertimeTypeIDs(ctx context.Context) (map[domain.Kind]string, error) {
	var rows []catalogRow
	err := r.db.Q(ctx).SelectContext(ctx, &rows, `
		SELECT id, LOWER(name) AS name
		FROM overtime_types
		WHERE active AND LOWER(name) IN ('diurnal', 'nocturnal')
	`)
	if err != nil {
		return nil, err
	}

	ids := make(map[domain.Kind]string, 2)
	for _, row := range rows {
		ids[domain.Kind(row.Name)] = row.ID
	}

	var missing []string
	for _, k := range []domain.Kind{domain.KindDiurnal, domain.KindNocturnal} {
		if ids[k] == "" {
			missing = append(missing, string(k))
		}
	}
	if len(missing) > 0 {
		return nil, errors.Configuration(fmt.Sprintf("overtime type catalog is missing: %s", strings.Join(missing, ", ")))
	}
	return ids, nil
}

// WorkflowStates returns the overtime module's pending, approved and rejected states
func (r *CatalogRepository) WorkflowStates(ctx context.Context) (StateCatalog, error) {
	var rows []catalogRow
	err := r.db.Q(ctx).SelectContext(ctx, &rows, `
		SELECT id, LOWER(name) AS name
		FROM workflow_states
		WHERE active AND LOWER(module) = $1
	`, domain.WorkflowModule)
	if err != nil {
		return StateCatalog{}, err
	}

	ids := make(map[domain.State]string, 3)
	for _, row := range rows {
		if s, ok := domain.ParseState(row.Name); ok {
			ids[s] = row.ID
		}
	}

	var missing []string
	for _, s := range []domain.State{domain.StatePending, domain.StateApproved, domain.StateRejected} {
		if ids[s] == "" {
			missing = append(missing, string(s))
		}
	}
	if len(missing) > 0 {
		return StateCatalog{}, errors.Configuration(fmt.Sprintf("workflow state catalog for %s is missing: %s",
			domain.WorkflowModule, strings.Join(missing, ", ")))
	}
	return NewStateCatalog(ids), nil
}
