package models

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// Profile represents the profiles table in the database.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	FavClub     string    `json:"favClub"`
	SkillLevel  int       `json:"skillLevel"`
	HomeCounty  string    `json:"homeCounty"`
	Lat         *float64  `json:"lat,omitempty"`
	Lon         *float64  `json:"lon,omitempty"`
	// device token for Expo push, never exposed through the API
	ExpoPushToken *string   `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (p *Profile) Validate() error {
	if p.ID == uuid.Nil {
		return fmt.Errorf("%w: id is required", ErrValidation)
	}
	if err := lengthBetween("displayName", p.DisplayName, 2, 50); err != nil {
		return err
	}
	if err := lengthBetween("favClub", p.FavClub, 2, 50); err != nil {
		return err
	}
	if err := lengthBetween("homeCounty", p.HomeCounty, 2, 50); err != nil {
		return err
	}
	if p.SkillLevel < 1 || p.SkillLevel > 5 {
		return fmt.Errorf("%w: skillLevel must be between 1 and 5", ErrValidation)
	}
	if p.AvatarURL != nil {
		if u, err := url.ParseRequestURI(*p.AvatarURL); err != nil || u.Host == "" {
			return fmt.Errorf("%w: avatarUrl must be an absolute URL", ErrValidation)
		}
	}
	if (p.Lat == nil) != (p.Lon == nil) {
		return fmt.Errorf("%w: lat and lon must be set together", ErrValidation)
	}
	if p.Lat != nil && (*p.Lat < -90 || *p.Lat > 90 || *p.Lon < -180 || *p.Lon > 180) {
		return fmt.Errorf("%w: lat/lon out of range", ErrValidation)
	}
	if p.ExpoPushToken != nil {
		if err := ValidatePushToken(*p.ExpoPushToken); err != nil {
			return err
		}
	}
	return nil
}

// ProfileUpdate carries the fields a client may change; nil leaves the
// stored value untouched.
type ProfileUpdate struct {
	DisplayName *string  `json:"displayName"`
	AvatarURL   *string  `json:"avatarUrl"`
	FavClub     *string  `json:"favClub"`
	SkillLevel  *int     `json:"skillLevel"`
	HomeCounty  *string  `json:"homeCounty"`
	Lat         *float64 `json:"lat"`
	Lon         *float64 `json:"lon"`
}

// Apply copies the set fields onto p.
func (u ProfileUpdate) Apply(p *Profile) {
	if u.DisplayName != nil {
		p.DisplayName = *u.DisplayName
	}
	if u.AvatarURL != nil {
		p.AvatarURL = u.AvatarURL
	}
	if u.FavClub != nil {
		p.FavClub = *u.FavClub
	}
	if u.SkillLevel != nil {
		p.SkillLevel = *u.SkillLevel
	}
	if u.HomeCounty != nil {
		p.HomeCounty = *u.HomeCounty
	}
	if u.Lat != nil {
		p.Lat = u.Lat
	}
	if u.Lon != nil {
		p.Lon = u.Lon
	}
}

const maxPushTokenLength = 255

func ValidatePushToken(token string) error {
	if token == "" || len(token) > maxPushTokenLength {
		return fmt.Errorf("%w: expoPushToken must be 1-%d characters", ErrValidation, maxPushTokenLength)
	}
	return nil
}
