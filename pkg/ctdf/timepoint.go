package ctdf

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var ErrMalformedTimestamp = errors.New("malformed timestamp")

const minutesPerDay = 24 * 60

// TimePoint is a wall-clock date and time exactly as the API reports it.
// There is no timezone attached and no conversion is ever done.
type TimePoint struct {
	Year  int `json:"year" groups:"basic,detailed"`
	Month int `json:"month" groups:"basic,detailed"`
	Day   int `json:"day" groups:"basic,detailed"`

	Hour   int `json:"hour" groups:"basic,detailed"`
	Minute int `json:"minute" groups:"basic,detailed"`
}

// ParseTimePoint accepts "YYYY-MM-DD HH:MM" and "YYYY-MM-DD HH:MM:SS".
// Seconds are validated but dropped.
func ParseTimePoint(value string) (TimePoint, error) {
	dateTime := strings.Split(value, " ")
	if len(dateTime) != 2 {
		return TimePoint{}, malformed(value)
	}

	dateParts := strings.Split(dateTime[0], "-")
	if len(dateParts) != 3 {
		return TimePoint{}, malformed(value)
	}

	timeParts := strings.Split(dateTime[1], ":")
	if len(timeParts) != 2 && len(timeParts) != 3 {
		return TimePoint{}, malformed(value)
	}

	// The year takes exactly four digits, everything else one or two
	var fields []int
	for i, part := range append(dateParts, timeParts...) {
		minWidth, maxWidth := 1, 2
		if i == 0 {
			minWidth, maxWidth = 4, 4
		}

		number, ok := parseField(part, minWidth, maxWidth)
		if !ok {
			return TimePoint{}, malformed(value)
		}
		fields = append(fields, number)
	}

	return TimePoint{
		Year:   fields[0],
		Month:  fields[1],
		Day:    fields[2],
		Hour:   fields[3],
		Minute: fields[4],
	}, nil
}

func parseField(s string, minWidth int, maxWidth int) (int, bool) {
	if len(s) < minWidth || len(s) > maxWidth {
		return 0, false
	}

	// Atoi alone would let signs through
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}

	number, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}

	return number, true
}

func malformed(value string) error {
	return errors.Wrapf(ErrMalformedTimestamp, "%q", value)
}

// Equal reports whether every field matches.
func (t TimePoint) Equal(other TimePoint) bool {
	return t == other
}

// SameClock compares only the hour and minute.
func (t TimePoint) SameClock(other TimePoint) bool {
	return t.Hour == other.Hour && t.Minute == other.Minute
}

// Clock renders the time as HH:MM.
func (t TimePoint) Clock() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// DateKey renders the date as YYYY-MM-DD.
func (t TimePoint) DateKey() string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year, t.Month, t.Day)
}

// DayOrdinal is the number of days between 1970-01-01 and the date in the
// proleptic Gregorian calendar.
func (t TimePoint) DayOrdinal() int64 {
	date := time.Date(t.Year, time.Month(t.Month), t.Day, 0, 0, 0, 0, time.UTC)

	return date.Unix() / (minutesPerDay * 60)
}

// Instant combines the day ordinal and minutes since midnight into a single
// value that orders across dates.
func (t TimePoint) Instant() int64 {
	return t.DayOrdinal()*minutesPerDay + int64(t.Hour*60+t.Minute)
}

func (t TimePoint) String() string {
	return t.DateKey() + " " + t.Clock()
}
