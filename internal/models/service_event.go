package models

import "time"

// ServiceEvent is a scheduled service occurrence. The ordered set of past
// occurrences is the reference against which absence streaks are counted;
// it is maintained explicitly rather than inferred from attendance data.
type ServiceEvent struct {
	ID          string      `db:"id" json:"id"`
	ServiceType ServiceType `db:"service_type" json:"service_type"`
	Name        string      `db:"name" json:"name"`
	ServiceDate time.Time   `db:"service_date" json:"service_date"`
	StartsAt    *time.Time  `db:"starts_at" json:"starts_at,omitempty"`
	CreatedBy   string      `db:"created_by" json:"created_by"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
}

// ServiceEventFilter scopes occurrence listings.
type ServiceEventFilter struct {
	ServiceType *ServiceType
	DateFrom    *time.Time
	DateTo      *time.Time
	Limit       int
}

// AbsentMember reports a member's current consecutive absence streak.
type AbsentMember struct {
	MemberID     string     `json:"member_id"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Phone        *string    `json:"phone,omitempty"`
	MissedCount  int        `json:"missed_count"`
	LastAttended *time.Time `json:"last_attended,omitempty"`
}
