package models

import "time"

// AttendanceLink is a shareable check-in token for a single service
// occurrence. A link is deliberately multi-use: one QR code serves the whole
// congregation, and per-member uniqueness is carried by the attendance
// records, not the link.
type AttendanceLink struct {
	ID             string      `db:"id" json:"id"`
	Token          string      `db:"token" json:"token"`
	ServiceType    ServiceType `db:"service_type" json:"service_type"`
	ServiceEventID *string     `db:"service_event_id" json:"service_event_id,omitempty"`
	ServiceName    string      `db:"service_name" json:"service_name"`
	ServiceDate    time.Time   `db:"service_date" json:"service_date"`
	IsActive       bool        `db:"is_active" json:"is_active"`
	ExpiresAt      *time.Time  `db:"expires_at" json:"expires_at,omitempty"`
	CreatedBy      string      `db:"created_by" json:"created_by"`
	CreatedAt      time.Time   `db:"created_at" json:"created_at"`
}

// Usable reports whether the link can still record check-ins at the given
// instant. Expiry wins over the active flag; deactivation is permanent.
func (l *AttendanceLink) Usable(now time.Time) error {
	if l.ExpiresAt != nil && !l.ExpiresAt.After(now) {
		return errLinkExpired
	}
	if !l.IsActive {
		return errLinkInactive
	}
	return nil
}

// Sentinels kept local so models stays free of the HTTP error package; the
// service layer maps them onto the API taxonomy.
var (
	errLinkExpired  = linkStateError("link expired")
	errLinkInactive = linkStateError("link inactive")
)

type linkStateError string

func (e linkStateError) Error() string { return string(e) }

// IsLinkExpired reports whether err is the expiry sentinel.
func IsLinkExpired(err error) bool { return err == errLinkExpired }

// IsLinkInactive reports whether err is the deactivation sentinel.
func IsLinkInactive(err error) bool { return err == errLinkInactive }
