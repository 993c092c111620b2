// Package timeago renders how long ago a status was posted: "just now",
// "5 minutes ago", "3 hours ago", and a short date once a day has passed.
package timeago

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tweeterrors "github.com/conneroisu/tweetify/internal/errors"
)

// Date layouts used once a status is more than a day old.
const (
	DayMonth     = "2 Jan"
	DayMonthYear = "2 Jan 06"
)

// Bucket upper bounds in minutes.
const (
	justNowMinutes = 1
	minutesLimit   = 45
	hourLimit      = 90
	hoursLimit     = 1440
	dayLimit       = 2880
	twoYearLimit   = 1051920
)

// Layouts tried in order when the timestamp is a string. The first is the
// created_at format of the Twitter REST API.
var Layouts = []string{
	time.RubyDate,
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Formatter renders relative times. The zero value formats dates in UTC.
type Formatter struct {
	Location *time.Location
}

// Format describes value relative to now. value may be an epoch in seconds
// (any integer or float kind, or a numeric string), a time.Time, a
// *time.Time, or a date string in one of Layouts.
//
// Empty input (nil, false, zero, "", "0" or the zero time) reports
// ok == false. Strings that parse as none of the layouts and unsupported
// types return an invalid timestamp error.
func (f Formatter) Format(value any, now time.Time) (string, bool, error) {
	ts, ok, err := Parse(value)
	if err != nil || !ok {
		return "", false, err
	}
	return f.Since(ts, now), true, nil
}

// Since buckets the distance between ts and now.
func (f Formatter) Since(ts, now time.Time) string {
	delta := math.Round(float64(now.Unix()-ts.Unix()) / 60)

	switch {
	case delta <= justNowMinutes:
		return "just now"
	case delta < minutesLimit:
		return fmt.Sprintf("%d minutes ago", int64(delta))
	case delta < hourLimit:
		return "1 hour ago"
	case delta < hoursLimit:
		return fmt.Sprintf("%d hours ago", int64(math.Round(delta/60)))
	case delta < dayLimit:
		return ts.In(f.location()).Format(DayMonth)
	case delta < twoYearLimit:
		return ts.In(f.location()).Format(DayMonth)
	default:
		return ts.In(f.location()).Format(DayMonthYear)
	}
}

func (f Formatter) location() *time.Location {
	if f.Location == nil {
		return time.UTC
	}
	return f.Location
}

// Format describes value relative to now with dates in UTC.
func Format(value any, now time.Time) (string, bool, error) {
	return Formatter{}.Format(value, now)
}

// Parse converts a timestamp value into a time. ok is false for empty input.
func Parse(value any) (time.Time, bool, error) {
	switch v := value.(type) {
	case nil:
		return time.Time{}, false, nil
	case bool:
		if !v {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, tweeterrors.NewInvalidTimestampError(v, nil)
	case int:
		return fromEpoch(int64(v))
	case int8:
		return fromEpoch(int64(v))
	case int16:
		return fromEpoch(int64(v))
	case int32:
		return fromEpoch(int64(v))
	case int64:
		return fromEpoch(v)
	case uint:
		return fromEpoch(int64(v))
	case uint32:
		return fromEpoch(int64(v))
	case uint64:
		return fromEpoch(int64(v))
	case float32:
		return fromEpoch(int64(v))
	case float64:
		return fromEpoch(int64(v))
	case time.Time:
		return v, !v.IsZero(), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return time.Time{}, false, nil
		}
		return *v, true, nil
	case string:
		return parseString(v)
	case fmt.Stringer:
		return parseString(v.String())
	default:
		return time.Time{}, false, tweeterrors.NewInvalidTimestampError(value,
			fmt.Errorf("unsupported type %T", value))
	}
}

func fromEpoch(sec int64) (time.Time, bool, error) {
	if sec == 0 {
		return time.Time{}, false, nil
	}
	return time.Unix(sec, 0).UTC(), true, nil
}

func parseString(s string) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return time.Time{}, false, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return fromEpoch(n)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(int64(f))
	}

	for _, layout := range Layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true, nil
		}
	}
	return time.Time{}, false, tweeterrors.NewInvalidTimestampError(s,
		fmt.Errorf("no known layout matches %q", s))
}
