package models

import "time"

// SettingType defines supported types for setting values.
type SettingType string

const (
	SettingTypeInteger SettingType = "INTEGER"
	SettingTypeBoolean SettingType = "BOOLEAN"
)

// Supported attendance setting keys.
const (
	SettingWatchThresholdMinutes = "online_watch_threshold_minutes"
	SettingEnableOnlineDetection = "enable_online_detection"
	SettingEnableSelfCheckin     = "enable_self_checkin"
	SettingEnableQRCheckin       = "enable_qr_checkin"
)

// Setting is a persisted key/value configuration entry.
type Setting struct {
	Key         string      `db:"key" json:"key"`
	Value       string      `db:"value" json:"value"`
	Type        SettingType `db:"type" json:"type"`
	Description *string     `db:"description" json:"description,omitempty"`
	UpdatedBy   *string     `db:"updated_by" json:"updated_by,omitempty"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// AttendanceSettings is the typed view of the settings table handed to the
// check-in engine. It is resolved per call (through a short-TTL cache), never
// held as ambient process state, so operators can tune values live.
type AttendanceSettings struct {
	WatchThresholdMinutes int  `json:"online_watch_threshold_minutes"`
	EnableOnlineDetection bool `json:"enable_online_detection"`
	EnableSelfCheckin     bool `json:"enable_self_checkin"`
	EnableQRCheckin       bool `json:"enable_qr_checkin"`
}

// DefaultAttendanceSettings returns the seed values used until an admin
// overrides them.
func DefaultAttendanceSettings() AttendanceSettings {
	return AttendanceSettings{
		WatchThresholdMinutes: 30,
		EnableOnlineDetection: true,
		EnableSelfCheckin:     true,
		EnableQRCheckin:       true,
	}
}

// WatchThreshold returns the minimum watched duration for an online session
// to count as attendance.
func (s AttendanceSettings) WatchThreshold() time.Duration {
	return time.Duration(s.WatchThresholdMinutes) * time.Minute
}
