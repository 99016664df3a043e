package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/notifysvc/push"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const ReceiptCollection = "push_receipts"

// Receipt is the audit record of one Expo batch.
type Receipt struct {
	GameID    string        `bson:"game_id"`
	Tokens    []string      `bson:"tokens"`
	Tickets   []push.Ticket `bson:"tickets"`
	Error     string        `bson:"error,omitempty"`
	CreatedAt time.Time     `bson:"created_at"`
	ExpiresAt time.Time     `bson:"expires_at"`
}

type ReceiptStore struct {
	collection *mongo.Collection
	ttl        time.Duration
}

func NewReceiptStore(db *mongo.Database, ttl time.Duration) *ReceiptStore {
	return &ReceiptStore{collection: db.Collection(ReceiptCollection), ttl: ttl}
}

// Record stores one receipt per batch.
func (s *ReceiptStore) Record(ctx context.Context, gameID uuid.UUID, batches []push.Batch) error {
	if len(batches) == 0 {
		return nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, 0, len(batches))
	for _, b := range batches {
		r := Receipt{
			GameID:    gameID.String(),
			Tokens:    b.Tokens,
			Tickets:   b.Tickets,
			CreatedAt: now,
			ExpiresAt: now.Add(s.ttl),
		}
		if b.Err != nil {
			r.Error = b.Err.Error()
		}
		docs = append(docs, r)
	}

	if _, err := s.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert push receipts for game %s: %w", gameID, err)
	}
	return nil
}

// ListByGame returns the most recent receipts for a game, newest first.
func (s *ReceiptStore) ListByGame(ctx context.Context, gameID uuid.UUID, limit int64) ([]Receipt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.collection.Find(ctx, bson.M{"game_id": gameID.String()}, opts)
	if err != nil {
		return nil, fmt.Errorf("find push receipts: %w", err)
	}
	defer cur.Close(ctx)

	var out []Receipt
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode push receipts: %w", err)
	}
	return out, nil
}
