package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

type TeamStore struct {
	db *pgxpool.Pool
}

func NewTeamStore(db *pgxpool.Pool) *TeamStore {
	return &TeamStore{db: db}
}

// CreateTeam inserts a team. An unknown manager fails with
// models.ErrNotFound.
func (s *TeamStore) CreateTeam(ctx context.Context, t models.Team) (*models.Team, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err := s.db.QueryRow(ctx, `
        INSERT INTO teams (name, manager_id, colours, league_tier)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at
    `, t.Name, t.ManagerID, t.Colours, t.LeagueTier).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("manager %s: %w", t.ManagerID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("could not create team: %w", err)
	}
	return &t, nil
}

func (s *TeamStore) ListByTier(ctx context.Context, tier models.LeagueTier, limit int) ([]*models.Team, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, name, manager_id, colours, league_tier, created_at
        FROM teams
        WHERE league_tier = $1
        ORDER BY name
        LIMIT $2
    `, tier, limit)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := []*models.Team{}
	for rows.Next() {
		t := &models.Team{}
		if err := rows.Scan(&t.ID, &t.Name, &t.ManagerID, &t.Colours, &t.LeagueTier, &t.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}
