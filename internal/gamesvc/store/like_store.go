package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

type LikeStore struct {
	db *pgxpool.Pool
}

func NewLikeStore(db *pgxpool.Pool) *LikeStore {
	return &LikeStore{db: db}
}

// Like records from -> to and, when to already likes from, returns the
// pair's direct chat, creating it on first match. Repeating a like is a
// no-op that still reports the existing match.
//
// Both profile rows are locked in id order first, so two profiles liking
// each other at the same moment serialize and exactly one of them creates
// the chat.
func (s *LikeStore) Like(ctx context.Context, like models.Like) (*models.LikeResult, error) {
	if err := like.Validate(); err != nil {
		return nil, err
	}
	low, high := orderedPair(like.FromID, like.ToID)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM profiles WHERE id IN ($1, $2) ORDER BY id FOR NO KEY UPDATE`, low, high)
	if err != nil {
		return nil, fmt.Errorf("lock profiles: %w", err)
	}
	locked := 0
	for rows.Next() {
		locked++
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock profiles: %w", err)
	}
	if locked != 2 {
		return nil, fmt.Errorf("like %s -> %s: %w", like.FromID, like.ToID, models.ErrNotFound)
	}

	tag, err := tx.Exec(ctx, `
        INSERT INTO likes (from_id, to_id)
        VALUES ($1, $2)
        ON CONFLICT (from_id, to_id) DO NOTHING
    `, like.FromID, like.ToID)
	if err != nil {
		return nil, fmt.Errorf("failed to create like: %w", err)
	}
	res := &models.LikeResult{Created: tag.RowsAffected() == 1}

	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM likes WHERE from_id = $1 AND to_id = $2)`,
		like.ToID, like.FromID,
	).Scan(&res.Mutual)
	if err != nil {
		return nil, fmt.Errorf("check mutual like: %w", err)
	}

	if res.Mutual {
		if res.Chat, err = directChat(ctx, tx, low, high); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit like: %w", err)
	}
	return res, nil
}

func directChat(ctx context.Context, tx pgx.Tx, low, high uuid.UUID) (*models.Chat, error) {
	chat := &models.Chat{Members: []uuid.UUID{low, high}}
	err := tx.QueryRow(ctx, `
        INSERT INTO chats (is_group, direct_low, direct_high)
        VALUES (false, $1, $2)
        ON CONFLICT (direct_low, direct_high) DO NOTHING
        RETURNING id, is_group, created_at
    `, low, high).Scan(&chat.ID, &chat.IsGroup, &chat.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx, `
            SELECT id, is_group, created_at FROM chats WHERE direct_low = $1 AND direct_high = $2
        `, low, high).Scan(&chat.ID, &chat.IsGroup, &chat.CreatedAt)
	}
	if err != nil {
		return nil, fmt.Errorf("create direct chat: %w", err)
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO chat_members (chat_id, profile_id)
        VALUES ($1, $2), ($1, $3)
        ON CONFLICT DO NOTHING
    `, chat.ID, low, high)
	if err != nil {
		return nil, fmt.Errorf("add chat members: %w", err)
	}
	return chat, nil
}

func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) < 0 {
		return a, b
	}
	return b, a
}
