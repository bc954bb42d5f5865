package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
)

type attendanceAnalyticsRepository interface {
	Stats(ctx context.Context, from, to time.Time, serviceType *models.ServiceType) (*models.AttendanceStats, error)
	TuplesInRange(ctx context.Context, from, to time.Time) ([]models.AttendanceTuple, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, int, error)
}

type engagementMemberReader interface {
	ListActive(ctx context.Context) ([]models.Member, error)
}

type occurrenceReader interface {
	RecentOccurrences(ctx context.Context, upTo time.Time, limit int) ([]models.ServiceEvent, error)
}

// EngagementService computes attendance aggregates and absence signals. It
// only reports; follow-up messaging is dispatched elsewhere.
type EngagementService struct {
	records     attendanceAnalyticsRepository
	members     engagementMemberReader
	occurrences occurrenceReader
	cache       *CacheService
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time
}

// NewEngagementService constructs the analyzer.
func NewEngagementService(records attendanceAnalyticsRepository, members engagementMemberReader, occurrences occurrenceReader, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *EngagementService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementService{
		records:     records,
		members:     members,
		occurrences: occurrences,
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Stats returns aggregated attendance for [startDate, endDate]. The boolean
// indicates whether data originated from cache.
func (s *EngagementService) Stats(ctx context.Context, startDate, endDate string, serviceType *string) (*models.AttendanceStats, bool, error) {
	from, err := parseServiceDate(startDate)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid startDate, expected YYYY-MM-DD")
	}
	to, err := parseServiceDate(endDate)
	if err != nil {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "invalid endDate, expected YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "endDate precedes startDate")
	}

	var filter *models.ServiceType
	if serviceType != nil && *serviceType != "" {
		st := models.ServiceType(strings.ToUpper(*serviceType))
		if !st.Valid() {
			return nil, false, appErrors.Clone(appErrors.ErrValidation, "unknown serviceType")
		}
		filter = &st
	}

	cacheKey := statsCacheKey(from, to, filter)
	var cached models.AttendanceStats
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}

	start := time.Now()
	stats, err := s.records.Stats(ctx, from, to, filter)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate attendance")
	}
	s.metrics.ObserveDBQuery("attendance_stats", time.Since(start))

	if err := s.cache.Set(ctx, cacheKey, stats, 0); err != nil {
		s.logger.Warn("cache attendance stats", zap.Error(err))
	}
	return stats, false, nil
}

// AbsentMembers returns active members whose current consecutive absence
// streak is at or above missedThreshold, measured against the most recent
// `window` scheduled occurrences. The streak counts backwards from the
// newest occurrence and stops at the first one the member attended: a member
// present last Sunday reports 0 regardless of earlier gaps.
func (s *EngagementService) AbsentMembers(ctx context.Context, missedThreshold, window int) ([]models.AbsentMember, error) {
	if missedThreshold < 1 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "threshold must be at least 1")
	}
	if window < missedThreshold {
		window = missedThreshold
	}

	occurrences, err := s.occurrences.RecentOccurrences(ctx, s.now(), window)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load service calendar")
	}
	if len(occurrences) == 0 {
		return []models.AbsentMember{}, nil
	}

	// occurrences are newest first
	newest := occurrences[0].ServiceDate
	oldest := occurrences[len(occurrences)-1].ServiceDate

	tuples, err := s.records.TuplesInRange(ctx, oldest, newest)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	attended := make(map[string]struct{}, len(tuples))
	lastSeen := make(map[string]time.Time, len(tuples))
	for _, t := range tuples {
		attended[attendanceKey(t.MemberID, t.ServiceType, t.ServiceDate)] = struct{}{}
		if existing, ok := lastSeen[t.MemberID]; !ok || t.ServiceDate.After(existing) {
			lastSeen[t.MemberID] = t.ServiceDate
		}
	}

	members, err := s.members.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list members")
	}

	flagged := make([]models.AbsentMember, 0)
	for _, member := range members {
		streak := 0
		for _, occ := range occurrences {
			if _, ok := attended[attendanceKey(member.ID, occ.ServiceType, occ.ServiceDate)]; ok {
				break
			}
			streak++
		}
		if streak < missedThreshold {
			continue
		}
		absent := models.AbsentMember{
			MemberID:    member.ID,
			FullName:    member.FullName,
			Email:       member.Email,
			Phone:       member.Phone,
			MissedCount: streak,
		}
		if last, ok := lastSeen[member.ID]; ok {
			lastCopy := last
			absent.LastAttended = &lastCopy
		}
		flagged = append(flagged, absent)
	}
	return flagged, nil
}

// MemberHistory returns a member's own paginated attendance history.
func (s *EngagementService) MemberHistory(ctx context.Context, memberID string, from, to *time.Time, page, pageSize int) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	if memberID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "member id required")
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	filter := models.AttendanceFilter{
		MemberID: memberID,
		DateFrom: from,
		DateTo:   to,
		Page:     page,
		PageSize: pageSize,
	}
	rows, total, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return rows, pagination, nil
}

// List returns admin-scoped attendance rows.
func (s *EngagementService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecordDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	rows, total, err := s.records.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return rows, pagination, nil
}

func attendanceKey(memberID string, serviceType models.ServiceType, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", memberID, serviceType, models.DayKey(date))
}

func statsCacheKey(from, to time.Time, serviceType *models.ServiceType) string {
	st := "all"
	if serviceType != nil {
		st = string(*serviceType)
	}
	return fmt.Sprintf("attendance:stats:%s:%s:%s", models.DayKey(from), models.DayKey(to), st)
}
