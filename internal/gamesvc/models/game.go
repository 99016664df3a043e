package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type GameStatus string

const (
	GameStatusOpen      GameStatus = "OPEN"
	GameStatusFull      GameStatus = "FULL"
	GameStatusCancelled GameStatus = "CANCELLED"
)

const (
	MinCapacity = 2
	MaxCapacity = 22
)

// Game represents the match_games table in the database.
type Game struct {
	ID             uuid.UUID  `json:"id"`
	OrganiserID    uuid.UUID  `json:"organiserId"`
	Title          string     `json:"title"`
	Venue          string     `json:"venue"`
	Lat            float64    `json:"lat"`
	Lon            float64    `json:"lon"`
	GameDate       time.Time  `json:"gameDate"`
	FeeCents       int64      `json:"feeCents"` // minor currency units
	Capacity       int        `json:"capacity"`
	Status         GameStatus `json:"status"`
	FillNotifiedAt *time.Time `json:"fillNotifiedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// GameWithCount is a game plus its current enrolled-player count.
type GameWithCount struct {
	Game
	Enrolled int `json:"enrolled"`
}

// NearbyGame is an OPEN game annotated with its distance from the caller.
type NearbyGame struct {
	Game
	DistanceKm float64 `json:"distanceKm"`
}

func (s GameStatus) Valid() bool {
	switch s {
	case GameStatusOpen, GameStatusFull, GameStatusCancelled:
		return true
	}
	return false
}

// Validate enforces the match_games schema before persistence.
func (g *Game) Validate() error {
	if g.OrganiserID == uuid.Nil {
		return fmt.Errorf("%w: organiserId is required", ErrValidation)
	}
	if err := lengthBetween("title", g.Title, 5, 100); err != nil {
		return err
	}
	if err := lengthBetween("venue", g.Venue, 5, 200); err != nil {
		return err
	}
	if g.Lat < -90 || g.Lat > 90 || g.Lon < -180 || g.Lon > 180 {
		return fmt.Errorf("%w: lat/lon out of range", ErrValidation)
	}
	if g.GameDate.IsZero() {
		return fmt.Errorf("%w: gameDate is required", ErrValidation)
	}
	if g.FeeCents < 0 {
		return fmt.Errorf("%w: feeCents cannot be negative", ErrValidation)
	}
	if g.Capacity < MinCapacity || g.Capacity > MaxCapacity {
		return fmt.Errorf("%w: capacity must be between %d and %d", ErrValidation, MinCapacity, MaxCapacity)
	}
	if !g.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, g.Status)
	}
	return nil
}

func lengthBetween(field, value string, min, max int) error {
	n := len([]rune(value))
	if n < min || n > max {
		return fmt.Errorf("%w: %s must be %d-%d characters", ErrValidation, field, min, max)
	}
	return nil
}
