package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LeagueTier string

const (
	LeagueTierBronze LeagueTier = "BRONZE"
	LeagueTierSilver LeagueTier = "SILVER"
	LeagueTierGold   LeagueTier = "GOLD"
)

func (t LeagueTier) Valid() bool {
	switch t {
	case LeagueTierBronze, LeagueTierSilver, LeagueTierGold:
		return true
	}
	return false
}

// Team represents the teams table in the database.
type Team struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ManagerID  uuid.UUID  `json:"managerId"`
	Colours    string     `json:"colours"`
	LeagueTier LeagueTier `json:"leagueTier"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (t *Team) Validate() error {
	if t.ManagerID == uuid.Nil {
		return fmt.Errorf("%w: managerId is required", ErrValidation)
	}
	if err := lengthBetween("name", t.Name, 3, 50); err != nil {
		return err
	}
	if err := lengthBetween("colours", t.Colours, 3, 50); err != nil {
		return err
	}
	if !t.LeagueTier.Valid() {
		return fmt.Errorf("%w: leagueTier must be BRONZE, SILVER or GOLD", ErrValidation)
	}
	return nil
}
