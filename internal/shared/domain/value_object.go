package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueObject represents an immutable domain concept defined by its attributes.
type ValueObject interface {
	Equals(other ValueObject) bool
}

// UserID is the chat platform's stable user identifier, shared across bounded contexts.
type UserID int64

// ParseUserID parses a decimal user identifier.
func ParseUserID(value string) (UserID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid user id %q: %w", value, err)
	}
	return UserID(id), nil
}

// String returns the decimal representation of the UserID.
func (u UserID) String() string {
	return strconv.FormatInt(int64(u), 10)
}

// Equals checks if two UserIDs are equal.
func (u UserID) Equals(other ValueObject) bool {
	if otherID, ok := other.(UserID); ok {
		return u == otherID
	}
	return false
}

// IsZero returns true if the UserID was never set.
func (u UserID) IsZero() bool {
	return u == 0
}

// dayLayout is the wire and storage format of a Day.
const dayLayout = "2006-01-02"

// Day is a UTC calendar day. Quota windows are keyed by Day.
type Day struct {
	year  int
	month time.Month
	day   int
}

// DayOf returns the UTC calendar day containing t.
func DayOf(t time.Time) Day {
	y, m, d := t.UTC().Date()
	return Day{year: y, month: m, day: d}
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(value string) (Day, error) {
	t, err := time.Parse(dayLayout, value)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", value, err)
	}
	return DayOf(t), nil
}

// String returns the YYYY-MM-DD form.
func (d Day) String() string {
	return d.Start().Format(dayLayout)
}

// Start returns midnight UTC at the beginning of the day.
func (d Day) Start() time.Time {
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// End returns midnight UTC at the beginning of the next day.
func (d Day) End() time.Time {
	return d.Start().AddDate(0, 0, 1)
}

// Next returns the following calendar day.
func (d Day) Next() Day {
	return DayOf(d.End())
}

// Equals checks if two days are the same calendar day.
func (d Day) Equals(other ValueObject) bool {
	if o, ok := other.(Day); ok {
		return d == o
	}
	return false
}

// IsZero returns true for the zero Day.
func (d Day) IsZero() bool {
	return d == Day{}
}
