package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, setting *models.Setting) error
}

const settingsCacheKey = "attendance:settings"

// SettingsService resolves and updates the live-tunable attendance settings.
// Reads go through a short-TTL cache so the check-in engine can consult
// settings on every call without a round trip per request; updates invalidate
// the cache so tuning takes effect within one TTL at worst, immediately on
// the updating node.
type SettingsService struct {
	repo      settingRepository
	cache     *CacheService
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo settingRepository, cache *CacheService, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Second
	}
	return &SettingsService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Resolve returns the current typed settings, falling back to defaults for
// any key missing from the table.
func (s *SettingsService) Resolve(ctx context.Context) (models.AttendanceSettings, error) {
	var cached models.AttendanceSettings
	if hit, err := s.cache.Get(ctx, settingsCacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	rows, err := s.repo.List(ctx)
	if err != nil {
		return models.AttendanceSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance settings")
	}

	settings := models.DefaultAttendanceSettings()
	for _, row := range rows {
		switch row.Key {
		case models.SettingWatchThresholdMinutes:
			if v, err := strconv.Atoi(row.Value); err == nil && v > 0 {
				settings.WatchThresholdMinutes = v
			}
		case models.SettingEnableOnlineDetection:
			settings.EnableOnlineDetection = row.Value == "true"
		case models.SettingEnableSelfCheckin:
			settings.EnableSelfCheckin = row.Value == "true"
		case models.SettingEnableQRCheckin:
			settings.EnableQRCheckin = row.Value == "true"
		}
	}

	if err := s.cache.Set(ctx, settingsCacheKey, settings, s.cacheTTL); err != nil {
		s.logger.Warn("cache settings", zap.Error(err))
	}
	return settings, nil
}

// UpdateSettingsRequest carries a partial settings update; nil fields are
// left untouched.
type UpdateSettingsRequest struct {
	WatchThresholdMinutes *int  `json:"online_watch_threshold_minutes" validate:"omitempty,min=1,max=720"`
	EnableOnlineDetection *bool `json:"enable_online_detection"`
	EnableSelfCheckin     *bool `json:"enable_self_checkin"`
	EnableQRCheckin       *bool `json:"enable_qr_checkin"`
}

// Update applies the provided settings and invalidates the cache.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest, actor *models.JWTClaims) (models.AttendanceSettings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.AttendanceSettings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if actor == nil {
		return models.AttendanceSettings{}, appErrors.ErrUnauthorized
	}

	updates := make([]models.Setting, 0, 4)
	if req.WatchThresholdMinutes != nil {
		updates = append(updates, models.Setting{
			Key:   models.SettingWatchThresholdMinutes,
			Value: strconv.Itoa(*req.WatchThresholdMinutes),
			Type:  models.SettingTypeInteger,
		})
	}
	if req.EnableOnlineDetection != nil {
		updates = append(updates, boolSetting(models.SettingEnableOnlineDetection, *req.EnableOnlineDetection))
	}
	if req.EnableSelfCheckin != nil {
		updates = append(updates, boolSetting(models.SettingEnableSelfCheckin, *req.EnableSelfCheckin))
	}
	if req.EnableQRCheckin != nil {
		updates = append(updates, boolSetting(models.SettingEnableQRCheckin, *req.EnableQRCheckin))
	}
	if len(updates) == 0 {
		return models.AttendanceSettings{}, appErrors.Clone(appErrors.ErrValidation, "no settings provided")
	}

	for i := range updates {
		updates[i].UpdatedBy = &actor.UserID
		if err := s.repo.Upsert(ctx, &updates[i]); err != nil {
			return models.AttendanceSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update settings")
		}
	}

	if err := s.cache.Invalidate(ctx, settingsCacheKey); err != nil {
		s.logger.Warn("invalidate settings cache", zap.Error(err))
	}

	s.logger.Info("attendance settings updated",
		zap.String("updated_by", actor.UserID),
		zap.Int("keys", len(updates)),
	)

	return s.Resolve(ctx)
}

func boolSetting(key string, value bool) models.Setting {
	return models.Setting{Key: key, Value: strconv.FormatBool(value), Type: models.SettingTypeBoolean}
}
