package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type attendanceWriter interface {
	Insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error)
}

type checkinLinkReader interface {
	GetByToken(ctx context.Context, token string) (*models.AttendanceLink, error)
}

type checkinMemberReader interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
}

type settingsResolver interface {
	Resolve(ctx context.Context) (models.AttendanceSettings, error)
}

// CheckinService accepts check-in attempts of the four supported kinds and
// either persists a record or rejects the attempt. Settings are resolved per
// call so operators can tune thresholds and toggles live.
type CheckinService struct {
	records   attendanceWriter
	links     checkinLinkReader
	members   checkinMemberReader
	settings  settingsResolver
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckinService constructs the check-in engine.
func NewCheckinService(records attendanceWriter, links checkinLinkReader, members checkinMemberReader, settings settingsResolver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *CheckinService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &CheckinService{
		records:   records,
		links:     links,
		members:   members,
		settings:  settings,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	_ = svc.validator.RegisterValidation("service_type", func(fl validator.FieldLevel) bool {
		return models.ServiceType(fl.Field().String()).Valid()
	})
	return svc
}

// SelfCheckInRequest is the payload for a member checking themselves in.
type SelfCheckInRequest struct {
	ServiceType    string  `json:"service_type" validate:"required,service_type"`
	ServiceEventID *string `json:"service_event_id"`
	ServiceName    string  `json:"service_name" validate:"required"`
	ServiceDate    string  `json:"service_date" validate:"required"`
	Notes          *string `json:"notes"`
}

// ManualCheckInRequest records attendance on behalf of another member.
type ManualCheckInRequest struct {
	TargetMemberID string  `json:"target_member_id" validate:"required"`
	ServiceType    string  `json:"service_type" validate:"required,service_type"`
	ServiceEventID *string `json:"service_event_id"`
	ServiceName    string  `json:"service_name" validate:"required"`
	ServiceDate    string  `json:"service_date" validate:"required"`
	Notes          *string `json:"notes"`
}

// OnlineCheckInRequest is a watch-session report from the streaming client.
// It is unauthenticated and retried heartbeat-style, so it must stay
// idempotent and never fail for expected conditions.
type OnlineCheckInRequest struct {
	MemberID       string  `json:"member_id" validate:"required"`
	ServiceEventID *string `json:"service_event_id"`
	ServiceName    string  `json:"service_name" validate:"required"`
	ServiceDate    string  `json:"service_date" validate:"required"`
	WatchDuration  int     `json:"watch_duration" validate:"min=0"`
	IsReplay       bool    `json:"is_replay"`
}

// OnlineCheckInResult reports whether a watch session was recorded.
type OnlineCheckInResult struct {
	Recorded        bool                     `json:"recorded"`
	AlreadyRecorded bool                     `json:"already_recorded,omitempty"`
	Record          *models.AttendanceRecord `json:"record,omitempty"`
}

// SelfCheckIn records the caller's own attendance.
func (s *CheckinService) SelfCheckIn(ctx context.Context, actor *models.JWTClaims, req SelfCheckInRequest) (*models.AttendanceRecord, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.EnableSelfCheckin {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "self check-in is disabled")
	}
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	record := &models.AttendanceRecord{
		MemberID:       actor.UserID,
		ServiceType:    models.ServiceType(req.ServiceType),
		ServiceDate:    serviceDate,
		ServiceEventID: req.ServiceEventID,
		ServiceName:    req.ServiceName,
		AttendanceType: models.AttendanceTypeSelf,
		CheckInTime:    s.now().UTC(),
		Notes:          req.Notes,
		CreatedBy:      actor.UserID,
	}
	return s.insert(ctx, record)
}

// ManualCheckIn records attendance for another member. Role enforcement
// happens at the route; the service still validates the target exists so a
// typo does not create an orphan record.
func (s *CheckinService) ManualCheckIn(ctx context.Context, operator *models.JWTClaims, req ManualCheckInRequest) (*models.AttendanceRecord, error) {
	if operator == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid check-in payload")
	}
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	if _, err := s.members.GetByID(ctx, req.TargetMemberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "target member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify member")
	}

	record := &models.AttendanceRecord{
		MemberID:       req.TargetMemberID,
		ServiceType:    models.ServiceType(req.ServiceType),
		ServiceDate:    serviceDate,
		ServiceEventID: req.ServiceEventID,
		ServiceName:    req.ServiceName,
		AttendanceType: models.AttendanceTypeManual,
		CheckInTime:    s.now().UTC(),
		Notes:          req.Notes,
		CreatedBy:      operator.UserID,
	}
	return s.insert(ctx, record)
}

// OnlineCheckIn applies the watch-threshold rule to a session report. Below
// the threshold the attempt is accepted as a no-op rather than rejected;
// an existing record short-circuits the same way since clients retry.
func (s *CheckinService) OnlineCheckIn(ctx context.Context, req OnlineCheckInRequest) (*OnlineCheckInResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session report")
	}
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.EnableOnlineDetection {
		return &OnlineCheckInResult{Recorded: false}, nil
	}
	serviceDate, err := parseServiceDate(req.ServiceDate)
	if err != nil {
		return nil, err
	}

	if time.Duration(req.WatchDuration)*time.Second < settings.WatchThreshold() {
		return &OnlineCheckInResult{Recorded: false}, nil
	}

	serviceType := models.ServiceTypeOnlineLive
	if req.IsReplay {
		serviceType = models.ServiceTypeOnlineReplay
	}

	watch := req.WatchDuration
	record := &models.AttendanceRecord{
		MemberID:       req.MemberID,
		ServiceType:    serviceType,
		ServiceDate:    serviceDate,
		ServiceEventID: req.ServiceEventID,
		ServiceName:    req.ServiceName,
		AttendanceType: models.AttendanceTypeOnline,
		CheckInTime:    s.now().UTC(),
		WatchDuration:  &watch,
		IsOnline:       true,
		CreatedBy:      req.MemberID,
	}
	stored, err := s.records.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordDuplicate()
			return &OnlineCheckInResult{Recorded: true, AlreadyRecorded: true}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record online attendance")
	}
	s.metrics.RecordCheckin(models.AttendanceTypeOnline)
	return &OnlineCheckInResult{Recorded: true, Record: stored}, nil
}

// LinkCheckIn records attendance through a shared link. Service identity is
// sourced from the link; created_by credits whoever issued it so manual
// audits can trace a surge of records back to a QR code.
func (s *CheckinService) LinkCheckIn(ctx context.Context, actor *models.JWTClaims, token string, notes *string) (*models.AttendanceRecord, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	settings, err := s.settings.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if !settings.EnableQRCheckin {
		return nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "link check-in is disabled")
	}

	link, err := s.links.GetByToken(ctx, token)
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
		case models.IsLinkInactive(err):
			return nil, appErrors.ErrLinkInactive
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "link validation failed")
		}
	}

	record := &models.AttendanceRecord{
		MemberID:       actor.UserID,
		ServiceType:    link.ServiceType,
		ServiceDate:    link.ServiceDate,
		ServiceEventID: link.ServiceEventID,
		ServiceName:    link.ServiceName,
		AttendanceType: models.AttendanceTypeQR,
		CheckInTime:    s.now().UTC(),
		Notes:          notes,
		CreatedBy:      link.CreatedBy,
	}
	return s.insert(ctx, record)
}

func (s *CheckinService) insert(ctx context.Context, record *models.AttendanceRecord) (*models.AttendanceRecord, error) {
	stored, err := s.records.Insert(ctx, record)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.metrics.RecordDuplicate()
			return nil, appErrors.ErrDuplicateAttendance
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	s.metrics.RecordCheckin(record.AttendanceType)
	s.logger.Info("attendance recorded",
		zap.String("member_id", stored.MemberID),
		zap.String("service_type", string(stored.ServiceType)),
		zap.String("service_date", models.DayKey(stored.ServiceDate)),
		zap.String("method", string(stored.AttendanceType)),
	)
	return stored, nil
}

func parseServiceDate(raw string) (time.Time, error) {
	date, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid service_date format, expected YYYY-MM-DD")
	}
	return models.NormalizeServiceDate(date), nil
}
