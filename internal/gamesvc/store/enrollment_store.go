package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

type EnrollmentStore struct {
	db *pgxpool.Pool
}

func NewEnrollmentStore(db *pgxpool.Pool) *EnrollmentStore {
	return &EnrollmentStore{db: db}
}

// Enroll inserts the (game, user) pair once. It reports false, with no
// error, when the pair already exists, so a redelivered payment event is a
// no-op. A missing game or profile fails with models.ErrNotFound.
func (s *EnrollmentStore) Enroll(ctx context.Context, e models.Enrollment) (bool, error) {
	if e.GameID == uuid.Nil || e.UserID == uuid.Nil {
		return false, fmt.Errorf("%w: gameId and userId are required", models.ErrValidation)
	}

	const query = `
INSERT INTO player_on_game (game_id, user_id, payment_ref)
VALUES ($1, $2, $3)
ON CONFLICT (game_id, user_id) DO NOTHING
`
	tag, err := s.db.Exec(ctx, query, e.GameID, e.UserID, e.PaymentRef)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("enroll user %s in game %s: %w", e.UserID, e.GameID, models.ErrNotFound)
		}
		return false, fmt.Errorf("failed to create enrollment: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (s *EnrollmentStore) CountByGameID(ctx context.Context, gameID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT count(*) FROM player_on_game WHERE game_id = $1`, gameID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count players for game %s: %w", gameID, err)
	}
	return count, nil
}

// ListPlayerPushTokens returns the push token of every enrolled player. An
// entry is nil when that player has not registered for push.
func (s *EnrollmentStore) ListPlayerPushTokens(ctx context.Context, gameID uuid.UUID) ([]*string, error) {
	query := `
		SELECT p.expo_push_token
		FROM player_on_game pg
		JOIN profiles p ON p.id = pg.user_id
		WHERE pg.game_id = $1
		ORDER BY pg.created_at
	`

	rows, err := s.db.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("list player tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*string
	for rows.Next() {
		var token *string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tokens, nil
}
