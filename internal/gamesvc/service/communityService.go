package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kicklink/kicklink-services/internal/gamesvc/models"
	log "github.com/sirupsen/logrus"
)

const (
	candidateLimit = 50
	messageLimit   = 200
	teamLimit      = 100
)

type ProfileWriter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CreateProfile(ctx context.Context, p models.Profile) error
	UpdateProfile(ctx context.Context, p models.Profile) error
	SetPushToken(ctx context.Context, id uuid.UUID, token *string) error
	ListCandidates(ctx context.Context, id uuid.UUID, limit int) ([]*models.Profile, error)
}

type LikeStore interface {
	Like(ctx context.Context, like models.Like) (*models.LikeResult, error)
}

type ChatStore interface {
	ListChats(ctx context.Context, profileID uuid.UUID) ([]*models.ChatSummary, error)
	ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]*models.Message, error)
	SendMessage(ctx context.Context, m models.Message) (*models.Message, error)
}

type TeamStore interface {
	CreateTeam(ctx context.Context, t models.Team) (*models.Team, error)
	ListByTier(ctx context.Context, tier models.LeagueTier, limit int) ([]*models.Team, error)
}

type MessagePublisher interface {
	PublishChatMessage(m *models.Message) error
}

// CommunityService covers the social side of the app: onboarding and
// profile edits, swipe likes, chats between matched players and league
// teams.
type CommunityService struct {
	profiles  ProfileWriter
	likes     LikeStore
	chats     ChatStore
	teams     TeamStore
	publisher MessagePublisher
	timeout   time.Duration
}

// NewCommunityService wires the stores. publisher is optional; without it
// messages are only stored.
func NewCommunityService(profiles ProfileWriter, likes LikeStore, chats ChatStore, teams TeamStore, publisher MessagePublisher, timeout time.Duration) *CommunityService {
	return &CommunityService{
		profiles:  profiles,
		likes:     likes,
		chats:     chats,
		teams:     teams,
		publisher: publisher,
		timeout:   timeout,
	}
}

func (s *CommunityService) CreateProfile(ctx context.Context, p models.Profile) (*models.Profile, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.profiles.CreateProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, p.ID)
}

// UpdateProfile applies a partial update and validates the merged profile.
func (s *CommunityService) UpdateProfile(ctx context.Context, id uuid.UUID, u models.ProfileUpdate) (*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	p, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.profiles.UpdateProfile(ctx, *p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterPushToken stores the device token fill notifications go to. A nil
// token unregisters the device.
func (s *CommunityService) RegisterPushToken(ctx context.Context, id uuid.UUID, token *string) error {
	if token != nil {
		if err := models.ValidatePushToken(*token); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.SetPushToken(ctx, id, token)
}

// Candidates lists profiles the caller has not swiped on yet.
func (s *CommunityService) Candidates(ctx context.Context, id uuid.UUID) ([]*models.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.profiles.ListCandidates(ctx, id, candidateLimit)
}

func (s *CommunityService) Like(ctx context.Context, like models.Like) (*models.LikeResult, error) {
	if err := like.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	res, err := s.likes.Like(ctx, like)
	if err != nil {
		return nil, err
	}
	if res.Mutual && res.Created {
		log.WithFields(log.Fields{
			"from_id": like.FromID,
			"to_id":   like.ToID,
			"chat_id": res.Chat.ID,
		}).Info("mutual like, direct chat ready")
	}
	return res, nil
}

func (s *CommunityService) ListChats(ctx context.Context, profileID uuid.UUID) ([]*models.ChatSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.chats.ListChats(ctx, profileID)
}

func (s *CommunityService) ListMessages(ctx context.Context, chatID uuid.UUID) ([]*models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.chats.ListMessages(ctx, chatID, messageLimit)
}

// SendMessage stores the message and then publishes it for realtime
// delivery. A failed publish is logged; the message is already stored and
// clients reload history on reconnect.
func (s *CommunityService) SendMessage(ctx context.Context, m models.Message) (*models.Message, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stored, err := s.chats.SendMessage(ctx, m)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		if err := s.publisher.PublishChatMessage(stored); err != nil {
			log.WithError(err).WithField("chat_id", stored.ChatID).Warn("unable to publish chat message")
		}
	}
	return stored, nil
}

func (s *CommunityService) CreateTeam(ctx context.Context, t models.Team) (*models.Team, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.teams.CreateTeam(ctx, t)
}

func (s *CommunityService) ListTeams(ctx context.Context, tier models.LeagueTier) ([]*models.Team, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: tier must be BRONZE, SILVER or GOLD", models.ErrValidation)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.teams.ListByTier(ctx, tier, teamLimit)
}
