package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grace-stack/flock-api/internal/models"
	"github.com/grace-stack/flock-api/pkg/jobs"
)

type absenceListerMock struct {
	absences []models.AbsentMember
}

func (m *absenceListerMock) AbsentMembers(_ context.Context, _, _ int) ([]models.AbsentMember, error) {
	return m.absences, nil
}

type notifierMock struct {
	mu       sync.Mutex
	notified []string
	done     chan struct{}
	expect   int
}

func newNotifierMock(expect int) *notifierMock {
	return &notifierMock{done: make(chan struct{}), expect: expect}
}

func (m *notifierMock) NotifyAbsence(_ context.Context, member models.AbsentMember) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, member.MemberID)
	if len(m.notified) == m.expect {
		close(m.done)
	}
	return nil
}

func TestFollowUpDispatch(t *testing.T) {
	absences := []models.AbsentMember{
		{MemberID: "a", FullName: "Alice", Email: "alice@example.com", MissedCount: 3},
		{MemberID: "b", FullName: "Bob", Email: "bob@example.com", MissedCount: 5},
	}
	notifier := newNotifierMock(len(absences))
	svc := NewFollowUpService(&absenceListerMock{absences: absences}, notifier, jobs.QueueConfig{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	result, err := svc.Dispatch(ctx, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}, 3, 12)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Enqueued)
	assert.Len(t, result.Flagged, 2)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("follow-up notifications were not delivered")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b"}, notifier.notified)
}

func TestFollowUpDispatchRequiresOperator(t *testing.T) {
	svc := NewFollowUpService(&absenceListerMock{}, newNotifierMock(0), jobs.QueueConfig{}, nil)

	_, err := svc.Dispatch(context.Background(), nil, 3, 12)
	require.Error(t, err)
}

func TestFollowUpDispatchNoFlagged(t *testing.T) {
	svc := NewFollowUpService(&absenceListerMock{}, newNotifierMock(0), jobs.QueueConfig{Workers: 1}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	result, err := svc.Dispatch(ctx, &models.JWTClaims{UserID: "staff-1", Role: models.RoleStaff}, 3, 12)
	require.NoError(t, err)
	assert.Zero(t, result.Enqueued)
	assert.Empty(t, result.Flagged)
}
