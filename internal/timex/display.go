package timex

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// StorageLayout is the fixed textual form timestamps are persisted in.
const StorageLayout = "2006-01-02 15:04:05"

// DefaultDisplayZone is the zone listings are rendered in unless configured.
const DefaultDisplayZone = "Asia/Kolkata"

// FormatStored renders t in UTC using StorageLayout.
func FormatStored(t time.Time) string {
	return t.UTC().Format(StorageLayout)
}

// ParseStored parses a StorageLayout string as a UTC instant.
func ParseStored(s string) (time.Time, error) {
	t, err := time.ParseInLocation(StorageLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// Displayer converts stored instants into display strings in one zone.
type Displayer struct {
	loc *time.Location
}

// NewDisplayer loads the named zone. An empty name selects DefaultDisplayZone.
func NewDisplayer(zone string) (*Displayer, error) {
	if zone == "" {
		zone = DefaultDisplayZone
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load location %q: %w", zone, err)
	}
	return &Displayer{loc: loc}, nil
}

// Format returns t in the display zone, or "" for the zero time.
func (d *Displayer) Format(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(d.loc).Format(StorageLayout)
}
