package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/comm"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
)

const tokenTTL = time.Minute

// Client invokes the capacity-fill notifier with a short-lived service token.
type Client struct {
	endpoint   string
	tokenAuth  *jwtauth.JWTAuth
	httpClient *http.Client
}

func NewClient(endpoint string, secret []byte, timeout time.Duration) *Client {
	return &Client{
		endpoint:   endpoint,
		tokenAuth:  jwtauth.New("HS256", secret, nil),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) serviceToken() (string, error) {
	claims := map[string]interface{}{
		"role": comm.ServiceRole,
		"sub":  "gamesvc",
	}
	jwtauth.SetIssuedNow(claims)
	jwtauth.SetExpiryIn(claims, tokenTTL)

	_, tokenString, err := c.tokenAuth.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("sign service token: %w", err)
	}
	return tokenString, nil
}

// NotifyGameFilled asks the notifier to fan out and mark gameID FULL. A 404
// maps to models.ErrNotFound; any other non-2xx is models.ErrUpstream.
func (c *Client) NotifyGameFilled(ctx context.Context, gameID uuid.UUID) error {
	body, err := json.Marshal(comm.NotifyRequest{GameID: gameID.String()})
	if err != nil {
		return err
	}

	token, err := c.serviceToken()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notifier request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: notifier call: %v", models.ErrUpstream, err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}

	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	if res.StatusCode == http.StatusNotFound {
		return fmt.Errorf("game %s: %w", gameID, models.ErrNotFound)
	}
	return fmt.Errorf("%w: notifier returned %d: %s", models.ErrUpstream, res.StatusCode, bytes.TrimSpace(msg))
}
