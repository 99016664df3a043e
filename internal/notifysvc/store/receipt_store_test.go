package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/db"
	"github.com/kicklink/kicklink-services/internal/notifysvc/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a real MongoDB when KICKLINK_TEST_MONGO_URI is set.
func TestReceiptStore(t *testing.T) {
	uri := os.Getenv("KICKLINK_TEST_MONGO_URI")
	if uri == "" {
		if os.Getenv("KICKLINK_REQUIRE_INTEGRATION") != "" {
			t.Fatal("KICKLINK_TEST_MONGO_URI not set")
		}
		t.Skip("KICKLINK_TEST_MONGO_URI not set")
	}

	ctx := context.Background()
	client, database, err := db.ConnectToDB(ctx, uri, "kicklink_test")
	require.NoError(t, err)
	defer client.Disconnect(ctx)
	require.NoError(t, db.CreateTTLIndexForCollection(ctx, database, ReceiptCollection))

	s := NewReceiptStore(database, time.Hour)
	gameID := uuid.New()
	err = s.Record(ctx, gameID, []push.Batch{
		{Tokens: []string{"a", "b"}, Tickets: []push.Ticket{{Status: "ok", ID: "1"}, {Status: "ok", ID: "2"}}},
		{Tokens: []string{"c"}, Err: errors.New("expo error (500)")},
	})
	require.NoError(t, err)

	got, err := s.ListByGame(ctx, gameID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Equal(t, gameID.String(), r.GameID)
		assert.WithinDuration(t, r.CreatedAt.Add(time.Hour), r.ExpiresAt, time.Second)
	}

	assert.NoError(t, s.Record(ctx, gameID, nil))
}
