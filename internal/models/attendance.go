package models

import "time"

// ServiceType identifies the kind of congregational service a record counts
// toward.
type ServiceType string

const (
	ServiceTypeSunday       ServiceType = "SUNDAY"
	ServiceTypeMidweek      ServiceType = "MIDWEEK"
	ServiceTypeSpecial      ServiceType = "SPECIAL"
	ServiceTypeOnlineLive   ServiceType = "ONLINE_LIVE"
	ServiceTypeOnlineReplay ServiceType = "ONLINE_REPLAY"
)

// Valid returns true when the service type is a supported value.
func (t ServiceType) Valid() bool {
	switch t {
	case ServiceTypeSunday, ServiceTypeMidweek, ServiceTypeSpecial, ServiceTypeOnlineLive, ServiceTypeOnlineReplay:
		return true
	default:
		return false
	}
}

// AttendanceType distinguishes the four recording methods.
type AttendanceType string

const (
	AttendanceTypeSelf   AttendanceType = "SELF_CHECKIN"
	AttendanceTypeManual AttendanceType = "MANUAL"
	AttendanceTypeOnline AttendanceType = "ONLINE_AUTO"
	AttendanceTypeQR     AttendanceType = "QR_CHECKIN"
)

// AttendanceRecord is a single check-in. Records are create-only: one row per
// (member, service type, service day), enforced by a unique index.
type AttendanceRecord struct {
	ID             string         `db:"id" json:"id"`
	MemberID       string         `db:"member_id" json:"member_id"`
	ServiceType    ServiceType    `db:"service_type" json:"service_type"`
	ServiceDate    time.Time      `db:"service_date" json:"service_date"`
	ServiceEventID *string        `db:"service_event_id" json:"service_event_id,omitempty"`
	ServiceName    string         `db:"service_name" json:"service_name"`
	AttendanceType AttendanceType `db:"attendance_type" json:"attendance_type"`
	CheckInTime    time.Time      `db:"check_in_time" json:"check_in_time"`
	CheckOutTime   *time.Time     `db:"check_out_time" json:"check_out_time,omitempty"`
	WatchDuration  *int           `db:"watch_duration" json:"watch_duration,omitempty"`
	IsOnline       bool           `db:"is_online" json:"is_online"`
	Notes          *string        `db:"notes" json:"notes,omitempty"`
	CreatedBy      string         `db:"created_by" json:"created_by"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// AttendanceRecordDetail extends a record with member metadata for admin
// listings.
type AttendanceRecordDetail struct {
	AttendanceRecord
	MemberName  string `db:"member_name" json:"member_name"`
	MemberEmail string `db:"member_email" json:"member_email"`
}

// AttendanceFilter defines query filters for attendance listings.
type AttendanceFilter struct {
	MemberID    string
	ServiceType *ServiceType
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}

// AttendanceStats aggregates records over a date range.
type AttendanceStats struct {
	TotalRecords  int                    `json:"total_records"`
	UniqueMembers int                    `json:"unique_members"`
	OnlineRecords int                    `json:"online_records"`
	ByServiceType map[ServiceType]int    `json:"by_service_type"`
	ByMethod      map[AttendanceType]int `json:"by_method"`
	ByDate        []AttendanceDateCount  `json:"by_date"`
}

// AttendanceDateCount is a per-day total within a stats range.
type AttendanceDateCount struct {
	Date  time.Time `db:"service_date" json:"date"`
	Count int       `db:"cnt" json:"count"`
}

// AttendanceTuple is the identity of a record for streak computation.
type AttendanceTuple struct {
	MemberID    string      `db:"member_id"`
	ServiceType ServiceType `db:"service_type"`
	ServiceDate time.Time   `db:"service_date"`
}

// NormalizeServiceDate truncates a service timestamp to UTC midnight. Every
// writer must pass through here: the uniqueness invariant compares service
// days, not instants, so mixed normalization would split a day into two keys.
func NormalizeServiceDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DayKey renders a normalized service date as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return NormalizeServiceDate(t).Format("2006-01-02")
}
