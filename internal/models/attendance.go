package models

import (
	"time"

	"github.com/Mohzhal/absensi/internal/geo"
)

// AttendanceType distinguishes the two records an employee may produce per
// day. The client proposes a type from what it has already fetched; the
// server is the source of truth and rejects an out-of-sequence submission.
type AttendanceType string

const (
	CheckIn  AttendanceType = "checkin"
	CheckOut AttendanceType = "checkout"
)

func ParseAttendanceType(s string) (AttendanceType, bool) {
	switch AttendanceType(s) {
	case CheckIn, CheckOut:
		return AttendanceType(s), true
	}
	return "", false
}

// Attendance is one accepted submission. Immutable once created: there is
// no edit or delete path, an out-of-range record stays on file for HR
// review with IsValid=false.
type Attendance struct {
	ID         int            `json:"id"`
	UserID     int            `json:"user_id"`
	CompanyID  int            `json:"company_id"`
	Type       AttendanceType `json:"type"`
	PhotoURL   string         `json:"photo_url"`
	Latitude   float64        `json:"latitude"`
	Longitude  float64        `json:"longitude"`
	DistanceM  int            `json:"distance_m"`
	IsValid    bool           `json:"is_valid"`
	CreatedAt  time.Time      `json:"created_at"`
	UserName   string         `json:"user_name,omitempty"`
	UserNIK    string         `json:"user_nik,omitempty"`
}

// AttendanceResult is the synchronous adjudication of one submission: the
// persisted distance/validity plus both coordinates so the client can draw
// its confirmation map. Msg carries the user-facing wording — the server
// encodes nuances like "recorded but out of range" there and clients must
// show it rather than derive their own string.
type AttendanceResult struct {
	DistanceM       int            `json:"distance_m"`
	IsValid         bool           `json:"is_valid"`
	Location        geo.Coordinate `json:"location"`
	CompanyLocation geo.Coordinate `json:"company_location"`
	Msg             string         `json:"msg"`
	Record          *Attendance    `json:"record,omitempty"`
}
