package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grace-stack/flock-api/internal/models"
	appErrors "github.com/grace-stack/flock-api/pkg/errors"
	"github.com/grace-stack/flock-api/pkg/jobs"
)

// Notifier delivers a follow-up message to a member. Delivery channels
// (email, SMS, pastoral call lists) are owned by the messaging platform; this
// service only hands over the contact details and the absence context.
type Notifier interface {
	NotifyAbsence(ctx context.Context, member models.AbsentMember) error
}

type absenceLister interface {
	AbsentMembers(ctx context.Context, missedThreshold, window int) ([]models.AbsentMember, error)
}

// FollowUpJob is the payload enqueued per flagged member.
type FollowUpJob struct {
	Member      models.AbsentMember `json:"member"`
	RequestedBy string              `json:"requested_by"`
	RequestedAt time.Time           `json:"requested_at"`
}

// FollowUpService flags absence streaks and dispatches one follow-up job per
// flagged member through the background queue. Notification delivery failures
// retry inside the queue and never surface to the triggering request.
type FollowUpService struct {
	analyzer absenceLister
	notifier Notifier
	queue    *jobs.Queue
	logger   *zap.Logger
}

// NewFollowUpService wires the dispatcher. Call Start before dispatching and
// Stop on shutdown.
func NewFollowUpService(analyzer absenceLister, notifier Notifier, cfg jobs.QueueConfig, logger *zap.Logger) *FollowUpService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &FollowUpService{analyzer: analyzer, notifier: notifier, logger: logger}
	svc.queue = jobs.NewQueue("follow-ups", svc.handle, cfg)
	return svc
}

// Start launches the queue workers.
func (s *FollowUpService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *FollowUpService) Stop() {
	s.queue.Stop()
}

// DispatchResult summarizes a dispatch run.
type DispatchResult struct {
	Flagged  []models.AbsentMember `json:"flagged"`
	Enqueued int                   `json:"enqueued"`
}

// Dispatch flags members at or above the threshold and enqueues a follow-up
// job for each. The flagged list is returned so the operator sees who will be
// contacted.
func (s *FollowUpService) Dispatch(ctx context.Context, operator *models.JWTClaims, missedThreshold, window int) (*DispatchResult, error) {
	if operator == nil {
		return nil, appErrors.ErrUnauthorized
	}
	flagged, err := s.analyzer.AbsentMembers(ctx, missedThreshold, window)
	if err != nil {
		return nil, err
	}

	result := &DispatchResult{Flagged: flagged}
	for _, member := range flagged {
		job := jobs.Job{
			ID:   uuid.NewString(),
			Type: "absence_follow_up",
			Payload: FollowUpJob{
				Member:      member,
				RequestedBy: operator.UserID,
				RequestedAt: time.Now().UTC(),
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("enqueue follow-up",
				zap.String("member_id", member.MemberID),
				zap.Error(err),
			)
			continue
		}
		result.Enqueued++
	}

	s.logger.Info("follow-ups dispatched",
		zap.Int("flagged", len(flagged)),
		zap.Int("enqueued", result.Enqueued),
		zap.Int("threshold", missedThreshold),
		zap.String("requested_by", operator.UserID),
	)
	return result, nil
}

func (s *FollowUpService) handle(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(FollowUpJob)
	if !ok {
		s.logger.Error("follow-up job with unexpected payload", zap.String("job", job.ID))
		return nil
	}
	return s.notifier.NotifyAbsence(ctx, payload.Member)
}

// LogNotifier is the default Notifier when no messaging integration is
// configured: it records who would have been contacted.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier builds the logging fallback notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// NotifyAbsence logs the follow-up instead of sending it.
func (n *LogNotifier) NotifyAbsence(_ context.Context, member models.AbsentMember) error {
	n.logger.Info("follow-up pending delivery",
		zap.String("member_id", member.MemberID),
		zap.String("email", member.Email),
		zap.Int("missed_count", member.MissedCount),
	)
	return nil
}
