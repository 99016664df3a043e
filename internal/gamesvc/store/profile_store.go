package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

type ProfileStore struct {
	db *pgxpool.Pool
}

func NewProfileStore(db *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{db: db}
}

func (r *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	row := r.db.QueryRow(ctx, `
        SELECT id, display_name, avatar_url, fav_club, skill_level, home_county, lat, lon, expo_push_token, created_at
        FROM profiles
        WHERE id = $1
    `, id)

	p := &models.Profile{}
	err := row.Scan(
		&p.ID,
		&p.DisplayName,
		&p.AvatarURL,
		&p.FavClub,
		&p.SkillLevel,
		&p.HomeCounty,
		&p.Lat,
		&p.Lon,
		&p.ExpoPushToken,
		&p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return p, nil
}

// CreateProfile validates and inserts a profile. Used by onboarding and by
// the integration tests to seed fixtures.
func (r *ProfileStore) CreateProfile(ctx context.Context, p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := r.db.Exec(ctx, `
        INSERT INTO profiles (id, display_name, avatar_url, fav_club, skill_level, home_county, lat, lon, expo_push_token)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, p.ID, p.DisplayName, p.AvatarURL, p.FavClub, p.SkillLevel, p.HomeCounty, p.Lat, p.Lon, p.ExpoPushToken)
	if err != nil {
		return fmt.Errorf("could not create profile: %w", err)
	}
	return nil
}

// UpdateProfile rewrites the editable columns of an existing profile.
func (r *ProfileStore) UpdateProfile(ctx context.Context, p models.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
        UPDATE profiles
        SET display_name = $2, avatar_url = $3, fav_club = $4, skill_level = $5, home_county = $6, lat = $7, lon = $8
        WHERE id = $1
    `, p.ID, p.DisplayName, p.AvatarURL, p.FavClub, p.SkillLevel, p.HomeCounty, p.Lat, p.Lon)
	if err != nil {
		return fmt.Errorf("could not update profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

// SetPushToken registers the device token the notifier pushes to. A nil
// token unregisters the device.
func (r *ProfileStore) SetPushToken(ctx context.Context, id uuid.UUID, token *string) error {
	tag, err := r.db.Exec(ctx, `UPDATE profiles SET expo_push_token = $2 WHERE id = $1`, id, token)
	if err != nil {
		return fmt.Errorf("could not set push token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("profile %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// ListCandidates returns profiles other than id that id has not liked yet,
// newest first.
func (r *ProfileStore) ListCandidates(ctx context.Context, id uuid.UUID, limit int) ([]*models.Profile, error) {
	rows, err := r.db.Query(ctx, `
        SELECT p.id, p.display_name, p.avatar_url, p.fav_club, p.skill_level, p.home_county, p.lat, p.lon, p.created_at
        FROM profiles p
        WHERE p.id <> $1
          AND NOT EXISTS (SELECT 1 FROM likes l WHERE l.from_id = $1 AND l.to_id = p.id)
        ORDER BY p.created_at DESC
        LIMIT $2
    `, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	defer rows.Close()

	profiles := []*models.Profile{}
	for rows.Next() {
		p := &models.Profile{}
		if err := rows.Scan(&p.ID, &p.DisplayName, &p.AvatarURL, &p.FavClub, &p.SkillLevel, &p.HomeCounty, &p.Lat, &p.Lon, &p.CreatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
