package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

const gameColumns = `id, organiser_id, title, venue, lat, lon, game_date, fee_cents, capacity, status, fill_notified_at, created_at`

type GameStore struct {
	db *pgxpool.Pool
}

func NewGameStore(db *pgxpool.Pool) *GameStore {
	return &GameStore{db: db}
}

func scanGame(row pgx.Row, extra ...any) (*models.Game, error) {
	g := &models.Game{}
	dest := []any{
		&g.ID,
		&g.OrganiserID,
		&g.Title,
		&g.Venue,
		&g.Lat,
		&g.Lon,
		&g.GameDate,
		&g.FeeCents,
		&g.Capacity,
		&g.Status,
		&g.FillNotifiedAt,
		&g.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *GameStore) GetGameByID(ctx context.Context, gameID uuid.UUID) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM match_games WHERE id = $1`

	game, err := scanGame(s.db.QueryRow(ctx, query, gameID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get game by ID: %w", err)
	}

	return game, nil
}

// GetGameWithCount returns the game and how many players are enrolled.
func (s *GameStore) GetGameWithCount(ctx context.Context, gameID uuid.UUID) (*models.GameWithCount, error) {
	query := `
		SELECT ` + gameColumns + `,
		       (SELECT count(*) FROM player_on_game p WHERE p.game_id = g.id)
		FROM match_games g
		WHERE g.id = $1
	`

	var enrolled int
	game, err := scanGame(s.db.QueryRow(ctx, query, gameID), &enrolled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get game with count: %w", err)
	}

	return &models.GameWithCount{Game: *game, Enrolled: enrolled}, nil
}

// GetGameWithOrganiserToken loads the game joined with the organiser's push
// token. The token is nil when the organiser has not registered for push.
func (s *GameStore) GetGameWithOrganiserToken(ctx context.Context, gameID uuid.UUID) (*models.Game, *string, error) {
	query := `
		SELECT g.id, g.organiser_id, g.title, g.venue, g.lat, g.lon, g.game_date, g.fee_cents,
		       g.capacity, g.status, g.fill_notified_at, g.created_at, p.expo_push_token
		FROM match_games g
		LEFT JOIN profiles p ON p.id = g.organiser_id
		WHERE g.id = $1
	`

	var token *string
	game, err := scanGame(s.db.QueryRow(ctx, query, gameID), &token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
		}
		return nil, nil, fmt.Errorf("failed to get game with organiser: %w", err)
	}

	return game, token, nil
}

// MarkFullIfCapacityReached flips OPEN -> FULL in a single conditional
// update. It reports true only for the caller whose update performed the
// transition; concurrent callers serialize on the row lock and re-evaluate
// the predicate, so at most one of them sees true.
func (s *GameStore) MarkFullIfCapacityReached(ctx context.Context, gameID uuid.UUID) (bool, error) {
	const query = `
UPDATE match_games g
SET status = 'FULL', filled_at = now()
WHERE g.id = $1
  AND g.status = 'OPEN'
  AND g.capacity <= (SELECT count(*) FROM player_on_game p WHERE p.game_id = g.id)
`
	tag, err := s.db.Exec(ctx, query, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to mark game %s full: %w", gameID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// MarkFullNotified sets FULL and records that fan-out ran. CANCELLED games
// are left untouched; the returned bool reports whether a row changed.
func (s *GameStore) MarkFullNotified(ctx context.Context, gameID uuid.UUID) (bool, error) {
	const query = `
UPDATE match_games
SET status = 'FULL',
    filled_at = COALESCE(filled_at, now()),
    fill_notified_at = now()
WHERE id = $1 AND status <> 'CANCELLED'
`
	tag, err := s.db.Exec(ctx, query, gameID)
	if err != nil {
		return false, fmt.Errorf("failed to update game %s status: %w", gameID, err)
	}

	return tag.RowsAffected() == 1, nil
}

// ClaimUnnotifiedFullGames claims up to limit FULL games whose fill
// notification never completed. A game is eligible once it has been FULL for
// longer than grace and any previous claim is older than reclaimAfter.
func (s *GameStore) ClaimUnnotifiedFullGames(ctx context.Context, limit int, grace, reclaimAfter time.Duration) ([]uuid.UUID, error) {
	const query = `
UPDATE match_games
SET fill_claimed_at = now()
WHERE id IN (
    SELECT id
    FROM match_games
    WHERE status = 'FULL'
      AND fill_notified_at IS NULL
      AND filled_at < now() - make_interval(secs => $2)
      AND (fill_claimed_at IS NULL OR fill_claimed_at < now() - make_interval(secs => $3))
    ORDER BY filled_at
    LIMIT $1
    FOR UPDATE SKIP LOCKED
)
RETURNING id
`
	rows, err := s.db.Query(ctx, query, limit, grace.Seconds(), reclaimAfter.Seconds())
	if err != nil {
		return nil, fmt.Errorf("claim unnotified games: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan claimed game: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return ids, nil
}

// CreateGame inserts a validated game as OPEN and returns the stored row.
func (s *GameStore) CreateGame(ctx context.Context, game models.Game) (*models.Game, error) {
	game.Status = models.GameStatusOpen
	if err := game.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO match_games (organiser_id, title, venue, lat, lon, game_date, fee_cents, capacity, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + gameColumns

	created, err := scanGame(s.db.QueryRow(ctx, query,
		game.OrganiserID,
		game.Title,
		game.Venue,
		game.Lat,
		game.Lon,
		game.GameDate,
		game.FeeCents,
		game.Capacity,
		game.Status,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("organiser %s: %w", game.OrganiserID, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return created, nil
}

// ListNearbyGames returns OPEN games within radiusKm of (lat, lon), closest first.
func (s *GameStore) ListNearbyGames(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]*models.NearbyGame, error) {
	query := `
		SELECT ` + gameColumns + `, distance_km
		FROM (
			SELECT *, 6371 * acos(LEAST(1.0,
				cos(radians($1)) * cos(radians(lat)) * cos(radians(lon) - radians($2)) +
				sin(radians($1)) * sin(radians(lat)))) AS distance_km
			FROM match_games
			WHERE status = 'OPEN'
		) g
		WHERE distance_km <= $3
		ORDER BY distance_km
		LIMIT $4
	`

	rows, err := s.db.Query(ctx, query, lat, lon, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("list nearby games: %w", err)
	}
	defer rows.Close()

	var games []*models.NearbyGame
	for rows.Next() {
		var distance float64
		g, err := scanGame(rows, &distance)
		if err != nil {
			return nil, fmt.Errorf("scan nearby game: %w", err)
		}
		games = append(games, &models.NearbyGame{Game: *g, DistanceKm: distance})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return games, nil
}
