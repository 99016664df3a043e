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

type ChatStore struct {
	db *pgxpool.Pool
}

func NewChatStore(db *pgxpool.Pool) *ChatStore {
	return &ChatStore{db: db}
}

// ListChats returns the chats profileID belongs to, newest first, each with
// its latest message.
func (s *ChatStore) ListChats(ctx context.Context, profileID uuid.UUID) ([]*models.ChatSummary, error) {
	query := `
		SELECT c.id, c.is_group, c.created_at,
		       (SELECT array_agg(cm2.profile_id::text ORDER BY cm2.profile_id) FROM chat_members cm2 WHERE cm2.chat_id = c.id),
		       m.id::text, m.sender_id::text, m.body, m.sent_at
		FROM chats c
		JOIN chat_members cm ON cm.chat_id = c.id AND cm.profile_id = $1
		LEFT JOIN LATERAL (
			SELECT id, sender_id, body, sent_at
			FROM messages
			WHERE chat_id = c.id
			ORDER BY sent_at DESC
			LIMIT 1
		) m ON true
		ORDER BY c.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := []*models.ChatSummary{}
	for rows.Next() {
		var (
			c                   models.ChatSummary
			members             []string
			msgID, sender, body *string
			sentAt              *time.Time
		)
		if err := rows.Scan(&c.ID, &c.IsGroup, &c.CreatedAt, &members, &msgID, &sender, &body, &sentAt); err != nil {
			return nil, err
		}
		if c.Members, err = parseIDs(members); err != nil {
			return nil, err
		}
		if msgID != nil {
			c.LastMessage = &models.Message{ChatID: c.ID, Body: *body, SentAt: *sentAt}
			if c.LastMessage.ID, err = uuid.Parse(*msgID); err != nil {
				return nil, err
			}
			if c.LastMessage.SenderID, err = uuid.Parse(*sender); err != nil {
				return nil, err
			}
		}
		chats = append(chats, &c)
	}
	return chats, rows.Err()
}

// ListMessages returns up to limit messages of a chat, oldest first.
func (s *ChatStore) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*models.Message, error) {
	if err := s.chatExists(ctx, chatID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
        SELECT id, chat_id, sender_id, body, sent_at
        FROM (
            SELECT id, chat_id, sender_id, body, sent_at
            FROM messages
            WHERE chat_id = $1
            ORDER BY sent_at DESC
            LIMIT $2
        ) recent
        ORDER BY sent_at
    `, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []*models.Message{}
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ChatID, &m.SenderID, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// SendMessage stores a message from a chat member. A sender outside the
// chat fails with models.ErrNotMember.
func (s *ChatStore) SendMessage(ctx context.Context, m models.Message) (*models.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	err := s.db.QueryRow(ctx, `
        INSERT INTO messages (chat_id, sender_id, body)
        SELECT $1, $2, $3
        WHERE EXISTS (SELECT 1 FROM chat_members WHERE chat_id = $1 AND profile_id = $2)
        RETURNING id, sent_at
    `, m.ChatID, m.SenderID, m.Body).Scan(&m.ID, &m.SentAt)
	if errors.Is(err, pgx.ErrNoRows) {
		if err := s.chatExists(ctx, m.ChatID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("profile %s in chat %s: %w", m.SenderID, m.ChatID, models.ErrNotMember)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}
	return &m, nil
}

func (s *ChatStore) chatExists(ctx context.Context, chatID uuid.UUID) error {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM chats WHERE id = $1)`, chatID).Scan(&exists); err != nil {
		return fmt.Errorf("look up chat: %w", err)
	}
	if !exists {
		return fmt.Errorf("chat %s: %w", chatID, models.ErrNotFound)
	}
	return nil
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
