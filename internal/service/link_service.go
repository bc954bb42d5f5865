package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type linkRepository interface {
	Insert(ctx context.Context, link *models.AttendanceLink) (*models.AttendanceLink, error)
	GetByToken(ctx context.Context, token string) (*models.AttendanceLink, error)
	Deactivate(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, activeOnly bool, limit int) ([]models.AttendanceLink, error)
}

// LinkService issues and validates shareable check-in links.
type LinkService struct {
	repo       linkRepository
	baseURL    string
	defaultTTL time.Duration
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewLinkService constructs the link registry.
func NewLinkService(repo linkRepository, baseURL string, defaultTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *LinkService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &LinkService{
		repo:       repo,
		baseURL:    baseURL,
		defaultTTL: defaultTTL,
		validator:  validate,
		logger:     logger,
		now:        time.Now,
	}
	_ = svc.validator.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return models.ServiceType(fl.Field().String()).Valid()
	})
	return svc
}

// IssueLinkRequest describes a new link for one service occurrence.
type IssueLinkRequest struct {
	ServiceType    string     `json:"service_type" validate:"required,service_type"`
	ServiceEventID *string    `json:"service_event_id"`
	ServiceName    string     `json:"service_name" validate:"required"`
	ServiceDate    string     `json:"service_date" validate:"required"`
	ExpiresAt      *time.Time `json:"expires_at"`
}

// IssuedLink pairs the stored link with the URL to embed in a QR code.
type IssuedLink struct {
	Link       *models.AttendanceLink `json:"link"`
	CheckinURL string                 `json:"checkin_url"`
}

// Issue creates a link with a fresh 256-bit token.
func (s *LinkService) Issue(ctx context.Context, operator *models.JWTClaims, req IssueLinkRequest) (*IssuedLink, error) {
	if operator == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid link payload")
	}
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expires_at must be in the future")
	}

	token, err := generateToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate token")
	}

	expiresAt := req.ExpiresAt
	if expiresAt == nil && s.defaultTTL > 0 {
		t := s.now().Add(s.defaultTTL)
		expiresAt = &t
	}

	link := &models.AttendanceLink{
		Token:          token,
		ServiceType:    models.ServiceType(req.ServiceType),
		ServiceEventID: req.ServiceEventID,
		ServiceName:    req.ServiceName,
		ServiceDate:    serviceDate,
		IsActive:       true,
		ExpiresAt:      expiresAt,
		CreatedBy:      operator.UserID,
	}
	stored, err := s.repo.Insert(ctx, link)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist link")
	}

	s.logger.Info("check-in link issued",
		zap.String("link_id", stored.ID),
		zap.String("service_type", string(stored.ServiceType)),
		zap.String("service_date", models.DayKey(stored.ServiceDate)),
		zap.String("created_by", stored.CreatedBy),
	)

	return &IssuedLink{Link: stored, CheckinURL: s.CheckinURL(stored.Token)}, nil
}

// CheckinURL builds the fully-qualified URL embedding the token.
func (s *LinkService) CheckinURL(token string) string {
	return fmt.Sprintf("%s/checkin/%s", s.baseURL, token)
}

// Resolve fetches a link by token and verifies it is still usable. Expiry is
// checked here at validation time; nothing is mutated, so an expired link
// stays in the table as inert audit data.
func (s *LinkService) Resolve(ctx context.Context, token string) (*models.AttendanceLink, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrLinkNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve link")
	}
	if err := link.Usable(s.now()); err != nil {
		switch {
		case models.IsLinkExpired(err):
			return nil, appErrors.ErrLinkExpired
		default:
			return nil, appErrors.ErrLinkInactive
		}
	}
	return link, nil
}

// Deactivate turns a link off. Idempotent deactivation is not offered; a
// second call reports not found only when the id never existed.
func (s *LinkService) Deactivate(ctx context.Context, id string) error {
	found, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate link")
	}
	if !found {
		return appErrors.Clone(appErrors.ErrNotFound, "link not found")
	}
	return nil
}

// List returns recent links for the admin view.
func (s *LinkService) List(ctx context.Context, activeOnly bool, limit int) ([]IssuedLink, error) {
	links, err := s.repo.List(ctx, activeOnly, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list links")
	}
	out := make([]IssuedLink, len(links))
	for i := range links {
		out[i] = IssuedLink{Link: &links[i], CheckinURL: s.CheckinURL(links[i].Token)}
	}
	return out, nil
}

// generateToken returns 32 random bytes hex encoded: 256 bits of entropy,
// unguessable for a link shared in public spaces.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
