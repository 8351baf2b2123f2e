package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/match-predictor/internal/domain/domainerr"
	"github.com/riskibarqy/match-predictor/internal/domain/team"
	qb "github.com/riskibarqy/match-predictor/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) UpsertTeam(ctx context.Context, name, league, country string) (int64, error) {
	t := team.Team{Name: strings.TrimSpace(name), League: strings.TrimSpace(league), Country: strings.TrimSpace(country)}
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", domainerr.ErrInvalidInput, err)
	}

	query, args, err := qb.InsertModel("teams", teamInsertModel{
		Name:    t.Name,
		League:  t.League,
		Country: t.Country,
	}, "ON CONFLICT (name, league) DO NOTHING")
	if err != nil {
		return 0, fmt.Errorf("build upsert team query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...); err != nil {
		return 0, domainerr.NewStorageError("upsert team", err)
	}

	id, err := r.findExact(ctx, t.Name, t.League)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *TeamRepository) FindTeamID(ctx context.Context, name, league string) (int64, error) {
	name, league = strings.TrimSpace(name), strings.TrimSpace(league)
	if name == "" {
		return 0, fmt.Errorf("%w: team name is required", domainerr.ErrInvalidInput)
	}
	if league != "" {
		return r.findExact(ctx, name, league)
	}

	query, args, err := qb.Select("id").
		From("teams").
		Where(qb.Eq("name", name)).
		OrderBy("id").
		Limit(2).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build find team by name query: %w", err)
	}

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, r.db.Rebind(query), args...); err != nil {
		return 0, domainerr.NewStorageError("find team", err)
	}
	switch len(ids) {
	case 0:
		return 0, fmt.Errorf("team %q: %w", name, domainerr.ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return 0, fmt.Errorf("%w: team name %q exists in several leagues, league is required", domainerr.ErrInvalidInput, name)
	}
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID int64) (team.Team, error) {
	query, args, err := qb.Select("id", "name", "league", "country").
		From("teams").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build get team query: %w", err)
	}

	var row teamRow
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return team.Team{}, fmt.Errorf("team %d: %w", teamID, domainerr.ErrNotFound)
		}
		return team.Team{}, domainerr.NewStorageError("get team", err)
	}
	return teamFromRow(row), nil
}

// List filters by exact name and league; empty filters match everything.
func (r *TeamRepository) List(ctx context.Context, name, league string) ([]team.Team, error) {
	conditions := make([]qb.Condition, 0, 2)
	if v := strings.TrimSpace(name); v != "" {
		conditions = append(conditions, qb.Eq("name", v))
	}
	if v := strings.TrimSpace(league); v != "" {
		conditions = append(conditions, qb.Eq("league", v))
	}

	query, args, err := qb.Select("id", "name", "league", "country").
		From("teams").
		Where(conditions...).
		OrderBy("league", "name").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list teams query: %w", err)
	}

	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, domainerr.NewStorageError("list teams", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamFromRow(row))
	}
	return out, nil
}

func (r *TeamRepository) findExact(ctx context.Context, name, league string) (int64, error) {
	query, args, err := qb.Select("id").
		From("teams").
		Where(qb.Eq("name", name), qb.Eq("league", league)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build find team query: %w", err)
	}

	var id int64
	if err := r.db.GetContext(ctx, &id, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("team %q in %q: %w", name, league, domainerr.ErrNotFound)
		}
		return 0, domainerr.NewStorageError("find team", err)
	}
	return id, nil
}

func teamFromRow(row teamRow) team.Team {
	return team.Team{
		ID:      row.ID,
		Name:    row.Name,
		League:  row.League,
		Country: row.Country,
	}
}
