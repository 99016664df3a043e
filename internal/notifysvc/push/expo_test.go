package push

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func messages(n int) []Message {
	out := make([]Message, n)
	for i := range out {
		out[i] = Message{
			To:    fmt.Sprintf("ExponentPushToken[%d]", i),
			Sound: "default",
			Title: "Game is Full!",
			Body:  `The game "Sunday 5-a-side" has reached capacity`,
			Data:  map[string]string{"gameId": "g1"},
		}
	}
	return out
}

func TestSendChunksAtBatchLimit(t *testing.T) {
	var (
		mu    sync.Mutex
		sizes []int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer expo-token", r.Header.Get("Authorization"))

		var got []Message
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&got)) {
			return
		}
		mu.Lock()
		sizes = append(sizes, len(got))
		mu.Unlock()

		tickets := make([]Ticket, len(got))
		for i := range tickets {
			tickets[i] = Ticket{Status: "ok", ID: fmt.Sprintf("t%d", i)}
		}
		json.NewEncoder(w).Encode(map[string]any{"data": tickets})
	}))
	defer srv.Close()

	c := NewExpoClient(srv.URL, "expo-token", time.Second)
	batches, err := c.Send(context.Background(), messages(230))
	require.NoError(t, err)

	assert.Equal(t, []int{100, 100, 30}, sizes)
	require.Len(t, batches, 3)
	assert.Len(t, batches[2].Tokens, 30)
	assert.Len(t, batches[2].Tickets, 30)
	assert.Equal(t, "ExponentPushToken[200]", batches[2].Tokens[0])
}

func TestSendMessageShape(t *testing.T) {
	var raw []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"data":[{"status":"error","message":"not registered","details":{"error":"DeviceNotRegistered"}}]}`))
	}))
	defer srv.Close()

	batches, err := NewExpoClient(srv.URL, "", time.Second).Send(context.Background(), messages(1))
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.Equal(t, "ExponentPushToken[0]", raw[0]["to"])
	assert.Equal(t, "default", raw[0]["sound"])
	assert.Equal(t, "Game is Full!", raw[0]["title"])
	assert.Equal(t, map[string]any{"gameId": "g1"}, raw[0]["data"])
	assert.Equal(t, "error", batches[0].Tickets[0].Status)
}

func TestSendReportsFailedBatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"errors":[{"code":"TOO_MANY_REQUESTS","message":"slow down"}]}`))
	}))
	defer srv.Close()

	batches, err := NewExpoClient(srv.URL, "", time.Second).Send(context.Background(), messages(150))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TOO_MANY_REQUESTS")
	require.Len(t, batches, 2)
	assert.Error(t, batches[0].Err)
	assert.Error(t, batches[1].Err)
}

func TestSendNothing(t *testing.T) {
	batches, err := NewExpoClient("http://127.0.0.1:1", "", time.Second).Send(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, batches)
}
