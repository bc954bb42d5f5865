package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type serviceEventRepository interface {
	Insert(ctx context.Context, event *models.ServiceEvent) (*models.ServiceEvent, error)
	List(ctx context.Context, filter models.ServiceEventFilter) ([]models.ServiceEvent, error)
}

// CalendarService maintains the schedule of service occurrences the absence
// analyzer counts against.
type CalendarService struct {
	repo      serviceEventRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the calendar service.
func NewCalendarService(repo serviceEventRepository, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CalendarService{repo: repo, validator: validate, logger: logger}
	_ = svc.validator.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return models.ServiceType(fl.Field().String()).Valid()
	})
	return svc
}

// ScheduleServiceRequest declares one upcoming or past occurrence.
type ScheduleServiceRequest struct {
	ServiceType string     `json:"service_type" validate:"required,service_type"`
	Name        string     `json:"name" validate:"required"`
	ServiceDate string     `json:"service_date" validate:"required"`
	StartsAt    *time.Time `json:"starts_at"`
}

// Schedule records a service occurrence on the calendar.
func (s *CalendarService) Schedule(ctx context.Context, operator *models.JWTClaims, req ScheduleServiceRequest) (*models.ServiceEvent, error) {
	if operator == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid service payload")
	}
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	event := &models.ServiceEvent{
		ServiceType: models.ServiceType(req.ServiceType),
		Name:        req.Name,
		ServiceDate: serviceDate,
		StartsAt:    req.StartsAt,
		CreatedBy:   operator.UserID,
	}
	stored, err := s.repo.Insert(ctx, event)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule service")
	}

	s.logger.Info("service scheduled",
		zap.String("event_id", stored.ID),
		zap.String("service_type", string(stored.ServiceType)),
		zap.String("service_date", models.DayKey(stored.ServiceDate)),
	)
	return stored, nil
}

// List returns calendar occurrences matching the filter, newest first.
func (s *CalendarService) List(ctx context.Context, filter models.ServiceEventFilter) ([]models.ServiceEvent, error) {
	events, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list services")
	}
	return events, nil
}
