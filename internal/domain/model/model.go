// Package model contains request-level value types passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Layouts used for birth dates and times.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// unknownTimeHour is the clock hour assumed when the birth time is unknown.
const unknownTimeHour = 12

// BirthData identifies a natal chart. It is comparable and is the natal
// cache key.
type BirthData struct {
	Date string `json:"date"`
	// Time is the local clock time of birth; ignored when TimeUnknown is set.
	Time        string  `json:"time,omitempty"`
	TimeUnknown bool    `json:"time_unknown,omitempty"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	// Location is an IANA zone name for Date and Time. Empty means UTC.
	Location string `json:"location,omitempty"`
}

// Validate checks the coordinates and the date and time layouts.
func (b BirthData) Validate() error {
	if b.Latitude < -90 || b.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v outside [-90,90]", ErrInvalidBirthData, b.Latitude)
	}
	if b.Longitude < -180 || b.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v outside [-180,180]", ErrInvalidBirthData, b.Longitude)
	}
	_, err := b.Instant()
	return err
}

// Instant resolves the birth moment. An unknown time resolves to local noon.
func (b BirthData) Instant() (time.Time, error) {
	loc := time.UTC
	if name := strings.TrimSpace(b.Location); name != "" {
		l, err := time.LoadLocation(name)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: location %q", ErrInvalidBirthData, name)
		}
		loc = l
	}
	day, err := time.ParseInLocation(DateLayout, strings.TrimSpace(b.Date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidBirthData, b.Date)
	}
	if b.TimeUnknown || strings.TrimSpace(b.Time) == "" {
		return day.Add(unknownTimeHour * time.Hour), nil
	}
	clock, err := time.Parse(TimeLayout, strings.TrimSpace(b.Time))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time %q", ErrInvalidBirthData, b.Time)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// HasTime reports whether a birth time is known, which decides whether the
// natal chart carries an ascendant.
func (b BirthData) HasTime() bool {
	return !b.TimeUnknown && strings.TrimSpace(b.Time) != ""
}

// Snapshot is one subject's stored daily reading.
type Snapshot struct {
	ID        string `json:"id"`
	SubjectID string `json:"subject_id"`
	// Date is the UTC calendar day the snapshot describes (YYYY-MM-DD).
	Date      string `json:"date"`
	Mental    int    `json:"mental"`
	Physical  int    `json:"physical"`
	Emotional int    `json:"emotional"`
	// Productivity is (Mental+Physical)/2 in integer arithmetic.
	Productivity int `json:"productivity"`
	Harmony      int `json:"harmony"`
	// Verdict is the day's synergy band across the three dimensions.
	Verdict    string    `json:"verdict"`
	ComputedAt time.Time `json:"computed_at"`
}

// ProductivityOf combines the mental and physical dimension scores.
func ProductivityOf(mental, physical int) int {
	return (mental + physical) / 2
}

// SnapshotJob asks the worker pool to compute one subject's daily snapshot.
type SnapshotJob struct {
	ID        string
	SubjectID string
	Birth     BirthData
	// Date is the UTC day to compute (YYYY-MM-DD).
	Date string
	// EnqueuedAt is used for queue latency metrics.
	EnqueuedAt time.Time
}

// Key identifies the job for deduplication: one snapshot per subject per day.
func (j SnapshotJob) Key() string {
	return j.SubjectID + "|" + j.Date
}
