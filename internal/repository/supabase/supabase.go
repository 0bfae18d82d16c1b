// Package supabase implements the repository interface on Supabase tables
// (ideas, themes, learnings) whose text columns mirror the sheet headers.
//
// Each table also carries an identity column, row_no, assigned on insert and
// never rewritten. Collections are returned in row_no order so an update keeps
// a record in place.
package supabase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/supabase-community/postgrest-go"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/repository"
	"kindling/internal/repository/rows"
	appErrors "kindling/pkg/errors"
)

// positionColumn is the insertion-order identity column of every table.
const positionColumn = "row_no"

// Tables is the subset of PostgREST operations the repository issues.
type Tables interface {
	SelectAll(table string) ([]map[string]any, error)
	Insert(table string, row rows.Row) error
	Update(table, id string, row rows.Row) (int, error)
	Delete(table, id string) (int, error)
}

// Repository is the Supabase store adapter.
type Repository struct {
	tables Tables
	logger *zap.Logger
}

var _ repository.Repository = (*Repository)(nil)

func tableName(s repository.Sheet) string { return strings.ToLower(string(s)) }

// NewRepository creates a repository over the given tables.
func NewRepository(tables Tables, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{tables: tables, logger: logger}
}

// NewFromURL connects to a Supabase project with a service role key.
func NewFromURL(url, key string, logger *zap.Logger) (*Repository, error) {
	client, err := supabase.NewClient(url, key, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create Supabase client: %w", err)
	}
	return NewRepository(&postgrestTables{client: client}, logger), nil
}

func (r *Repository) selectRows(ctx context.Context, sheet repository.Sheet) ([]rows.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := r.tables.SelectAll(tableName(sheet))
	if err != nil {
		return nil, appErrors.NewUpstream(fmt.Sprintf("failed to read %s", sheet), err)
	}
	sort.SliceStable(raw, func(i, j int) bool { return position(raw[i]) < position(raw[j]) })
	out := make([]rows.Row, 0, len(raw))
	for _, record := range raw {
		row := toRow(record)
		delete(row, positionColumn)
		out = append(out, row)
	}
	return out, nil
}

// position reads the identity column. Records without one sort last.
func position(record map[string]any) float64 {
	switch v := record[positionColumn].(type) {
	case float64:
		return v
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return float64(1 << 53)
}

func (r *Repository) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	found, err := r.selectRows(ctx, repository.SheetIdeas)
	if err != nil {
		return nil, err
	}
	ideas := make([]domain.Idea, 0, len(found))
	for _, row := range found {
		ideas = append(ideas, rows.ToIdea(row))
	}
	return ideas, nil
}

// GetIdea scans the table; the idea collection of a single user stays small.
func (r *Repository) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	ideas, err := r.ListIdeas(ctx)
	if err != nil {
		return domain.Idea{}, err
	}
	for _, idea := range ideas {
		if idea.ID == id {
			return idea, nil
		}
	}
	return domain.Idea{}, repository.NewNotFound("idea", id)
}

func (r *Repository) CreateIdea(ctx context.Context, idea domain.Idea) error {
	return r.insert(ctx, repository.SheetIdeas, rows.FromIdea(idea))
}

func (r *Repository) UpdateIdea(ctx context.Context, idea domain.Idea) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := r.tables.Update(tableName(repository.SheetIdeas), idea.ID, rows.FromIdea(idea))
	if err != nil {
		return appErrors.NewUpstream("failed to update idea", err)
	}
	if n == 0 {
		return repository.NewNotFound("idea", idea.ID)
	}
	return nil
}

func (r *Repository) DeleteIdea(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n, err := r.tables.Delete(tableName(repository.SheetIdeas), id)
	if err != nil {
		return appErrors.NewUpstream("failed to delete idea", err)
	}
	if n == 0 {
		return repository.NewNotFound("idea", id)
	}
	r.logger.Debug("Idea row deleted", zap.String("ideaID", id))
	return nil
}

func (r *Repository) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	found, err := r.selectRows(ctx, repository.SheetThemes)
	if err != nil {
		return nil, err
	}
	themes := make([]domain.Theme, 0, len(found))
	for _, row := range found {
		themes = append(themes, rows.ToTheme(row))
	}
	return themes, nil
}

func (r *Repository) CreateTheme(ctx context.Context, theme domain.Theme) error {
	return r.insert(ctx, repository.SheetThemes, rows.FromTheme(theme))
}

func (r *Repository) ListLearnings(ctx context.Context) ([]domain.Learning, error) {
	found, err := r.selectRows(ctx, repository.SheetLearnings)
	if err != nil {
		return nil, err
	}
	learnings := make([]domain.Learning, 0, len(found))
	for _, row := range found {
		learnings = append(learnings, rows.ToLearning(row))
	}
	return learnings, nil
}

func (r *Repository) CreateLearning(ctx context.Context, learning domain.Learning) error {
	return r.insert(ctx, repository.SheetLearnings, rows.FromLearning(learning))
}

// InitializeTables checks that every table is reachable. Supabase tables are
// created by migrations, so there is no header row to write.
func (r *Repository) InitializeTables(ctx context.Context) error {
	for _, sheet := range repository.Sheets {
		if _, err := r.selectRows(ctx, sheet); err != nil {
			return appErrors.NewUnavailable(fmt.Sprintf("table %s is not available", tableName(sheet)), err)
		}
	}
	return nil
}

func (r *Repository) insert(ctx context.Context, sheet repository.Sheet, row rows.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.tables.Insert(tableName(sheet), row); err != nil {
		return appErrors.NewUpstream(fmt.Sprintf("failed to write %s row", sheet), err)
	}
	return nil
}

// toRow flattens a decoded record into string cells.
func toRow(record map[string]any) rows.Row {
	row := make(rows.Row, len(record))
	for k, v := range record {
		switch val := v.(type) {
		case nil:
			row[k] = ""
		case string:
			row[k] = val
		case float64:
			row[k] = fmt.Sprintf("%g", val)
		default:
			row[k] = fmt.Sprint(val)
		}
	}
	return row
}

// postgrestTables issues the calls through the supabase-go client.
type postgrestTables struct {
	client *supabase.Client
}

func (p *postgrestTables) SelectAll(table string) ([]map[string]any, error) {
	var out []map[string]any
	query := p.client.From(table).Select("*", "", false).
		Order(positionColumn, &postgrest.OrderOpts{Ascending: true})
	if _, err := query.ExecuteTo(&out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *postgrestTables) Insert(table string, row rows.Row) error {
	_, _, err := p.client.From(table).Insert(row, false, "", "minimal", "").Execute()
	return err
}

func (p *postgrestTables) Update(table, id string, row rows.Row) (int, error) {
	var updated []map[string]any
	if _, err := p.client.From(table).Update(row, "representation", "").Eq("id", id).ExecuteTo(&updated); err != nil {
		return 0, err
	}
	return len(updated), nil
}

func (p *postgrestTables) Delete(table, id string) (int, error) {
	var deleted []map[string]any
	if _, err := p.client.From(table).Delete("representation", "").Eq("id", id).ExecuteTo(&deleted); err != nil {
		return 0, err
	}
	return len(deleted), nil
}
