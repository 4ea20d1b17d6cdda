package ctdf

import (
	"fmt"

	"golang.org/x/exp/slices"
)

type DepartureBoard struct {
	StopRef            string                   `json:"stopRef" groups:"detailed"`
	Line               string                   `json:"line" groups:"basic,detailed"`
	DestinationDisplay string                   `json:"destination" groups:"basic,detailed"`
	Type               DepartureBoardRecordType `json:"type" groups:"basic,detailed"`

	ScheduledTime TimePoint  `json:"scheduledTime" groups:"detailed"`
	RealtimeTime  *TimePoint `json:"realtimeTime,omitempty" groups:"detailed"`
	NextDay       bool       `json:"nextDay" groups:"detailed"`

	Instant     int64  `json:"instant" groups:"detailed"`
	DisplayText string `json:"displayText" groups:"basic,detailed"`
	IsToday     bool   `json:"isToday" groups:"basic,detailed"`
}

type DepartureBoardRecordType string

const (
	DepartureBoardRecordTypeScheduled        DepartureBoardRecordType = "Scheduled"
	DepartureBoardRecordTypeRealtimeTracked  DepartureBoardRecordType = "RealtimeTracked"
	DepartureBoardRecordTypeRealtimeAdjusted DepartureBoardRecordType = "RealtimeAdjusted"
)

// RawDeparture is one trip entry from a stop schedule. RealtimeTime is nil
// when there is no live estimate.
type RawDeparture struct {
	Time         string
	RealtimeTime *string
	Passed       bool
	NextDay      bool
}

// NewDepartureBoard builds a single departure record. The caller is expected
// to have dropped passed departures already.
func NewDepartureBoard(stopRef string, line string, destination string, raw RawDeparture) (*DepartureBoard, error) {
	scheduled, err := ParseTimePoint(raw.Time)
	if err != nil {
		return nil, err
	}

	var realtime *TimePoint
	if raw.RealtimeTime != nil {
		parsed, err := ParseTimePoint(*raw.RealtimeTime)
		if err != nil {
			return nil, err
		}
		realtime = &parsed
	}

	departure := &DepartureBoard{
		StopRef:            stopRef,
		Line:               line,
		DestinationDisplay: destination,
		ScheduledTime:      scheduled,
		RealtimeTime:       realtime,
		NextDay:            raw.NextDay,
		IsToday:            !raw.NextDay,
	}

	departure.Instant = departure.EffectiveTime().Instant()
	departure.Type, departure.DisplayText = displayTime(scheduled, realtime)

	return departure, nil
}

// EffectiveTime is the realtime estimate when there is one, otherwise the
// scheduled time.
func (d *DepartureBoard) EffectiveTime() TimePoint {
	if d.RealtimeTime != nil {
		return *d.RealtimeTime
	}

	return d.ScheduledTime
}

func (d *DepartureBoard) String() string {
	return fmt.Sprintf("%s %s: %s", d.Line, d.DestinationDisplay, d.DisplayText)
}

func displayTime(scheduled TimePoint, realtime *TimePoint) (DepartureBoardRecordType, string) {
	if realtime == nil {
		return DepartureBoardRecordTypeScheduled, fmt.Sprintf("(%s)", scheduled.Clock())
	}

	if scheduled.SameClock(*realtime) {
		return DepartureBoardRecordTypeRealtimeTracked, realtime.Clock()
	}

	return DepartureBoardRecordTypeRealtimeAdjusted, fmt.Sprintf("(%s) %s", scheduled.Clock(), realtime.Clock())
}

// RankDepartureBoard returns the departures ordered by effective instant.
// Departures with the same instant keep the order they were discovered in.
func RankDepartureBoard(departureBoard []*DepartureBoard) []*DepartureBoard {
	ranked := slices.Clone(departureBoard)

	slices.SortStableFunc(ranked, func(a, b *DepartureBoard) int {
		switch {
		case a.Instant < b.Instant:
			return -1
		case a.Instant > b.Instant:
			return 1
		default:
			return 0
		}
	})

	return ranked
}

// TruncateDepartureBoard cuts the board down to at most count records
func TruncateDepartureBoard(departureBoard []*DepartureBoard, count int) []*DepartureBoard {
	if count < 0 {
		count = 0
	}

	if len(departureBoard) > count {
		return departureBoard[:count]
	}

	return departureBoard
}
