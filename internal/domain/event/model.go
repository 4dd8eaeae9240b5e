package event

import (
	"fmt"
	"time"
)

// Status buckets an event by where it sits against the clock.
type Status string

const (
	StatusFuture Status = "future"
	StatusActive Status = "active"
	StatusPast   Status = "past"
)

// Level is the upstream event tier. Only LevelWorld is interpreted by the
// qualification tagger; other values pass through.
const (
	LevelWorld     = "World"
	LevelSignature = "Signature"
	LevelRegional  = "Regional"
)

type Location struct {
	Venue   string
	City    string
	Region  string
	Country string
}

// String joins the non-empty parts for the denormalized location field.
func (l Location) String() string {
	out := ""
	for _, part := range []string{l.City, l.Region, l.Country} {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

type Division struct {
	ID   int
	Name string
}

// Event is one competition event. SKU is the stable identity; ExternalID is
// the source API's numeric id.
type Event struct {
	SKU        string
	ExternalID int64
	Name       string
	Level      string
	Start      string
	End        string
	Location   Location
	Divisions  []Division
}

func (e Event) Validate() error {
	if e.SKU == "" {
		return fmt.Errorf("event sku is required")
	}
	if e.Name == "" {
		return fmt.Errorf("event name is required")
	}
	return nil
}

// StatusAt derives the event status from its start/end timestamps. Start and
// End are the upstream RFC3339 strings; lexical comparison is safe for them.
func (e Event) StatusAt(now time.Time) Status {
	ts := now.UTC().Format(time.RFC3339)
	switch {
	case e.Start != "" && e.End != "" && e.Start <= ts && ts <= e.End:
		return StatusActive
	case e.End != "" && e.End < ts:
		return StatusPast
	default:
		return StatusFuture
	}
}
