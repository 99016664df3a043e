package push

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	DefaultExpoURL = "https://exp.host/--/api/v2/push/send"
	MaxBatchSize   = 100 // Expo per-request message limit

	TicketOK    = "ok"
	TicketError = "error"
)

// Message is one Expo push message.
type Message struct {
	To    string            `json:"to"`
	Sound string            `json:"sound,omitempty"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// Ticket is Expo's per-message acknowledgement.
type Ticket struct {
	Status  string         `json:"status"` // TicketOK or TicketError
	ID      string         `json:"id,omitempty"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// Batch is the outcome of one POST to Expo.
type Batch struct {
	Tokens  []string
	Tickets []Ticket
	Err     error
}

type expoResponse struct {
	Data   []Ticket `json:"data"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type ExpoClient struct {
	url         string
	accessToken string
	client      *http.Client
}

// NewExpoClient returns a client posting to url. accessToken is optional and
// only needed when the Expo project enforces push security.
func NewExpoClient(url, accessToken string, timeout time.Duration) *ExpoClient {
	if url == "" {
		url = DefaultExpoURL
	}
	return &ExpoClient{
		url:         url,
		accessToken: accessToken,
		client:      &http.Client{Timeout: timeout},
	}
}

// Send posts messages in chunks of MaxBatchSize. Every chunk is attempted;
// the returned error joins the failures of individual chunks.
func (c *ExpoClient) Send(ctx context.Context, messages []Message) ([]Batch, error) {
	var (
		batches []Batch
		errs    []error
	)
	for i := 0; i < len(messages); i += MaxBatchSize {
		end := i + MaxBatchSize
		if end > len(messages) {
			end = len(messages)
		}
		chunk := messages[i:end]

		b := Batch{Tokens: make([]string, 0, len(chunk))}
		for _, m := range chunk {
			b.Tokens = append(b.Tokens, m.To)
		}
		b.Tickets, b.Err = c.send(ctx, chunk)
		if b.Err != nil {
			errs = append(errs, fmt.Errorf("batch %d-%d: %w", i, end, b.Err))
		}
		batches = append(batches, b)
	}

	return batches, errors.Join(errs...)
}

func (c *ExpoClient) send(ctx context.Context, chunk []Message) ([]Ticket, error) {
	body, err := json.Marshal(chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal messages: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("expo request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var out expoResponse
	if jsonErr := json.Unmarshal(respBody, &out); jsonErr != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("failed to decode response: %w", jsonErr)
	}
	if resp.StatusCode != http.StatusOK {
		if len(out.Errors) > 0 {
			return out.Data, fmt.Errorf("expo error (%d): %s: %s", resp.StatusCode, out.Errors[0].Code, out.Errors[0].Message)
		}
		return out.Data, fmt.Errorf("expo error (%d): %s", resp.StatusCode, string(respBody))
	}

	return out.Data, nil
}
