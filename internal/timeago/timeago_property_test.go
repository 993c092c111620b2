//go:build property
// +build property

package timeago

import (
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestFormatProperties checks the bucket boundaries over generated deltas
func TestFormatProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	base := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	// Property: under 45 minutes reads in minutes, never as a date
	properties.Property("minutes bucket", prop.ForAll(
		func(m int) bool {
			s, ok, err := Format(base.Add(-time.Duration(m)*time.Minute), base)
			return err == nil && ok && strings.HasSuffix(s, " minutes ago")
		},
		gen.IntRange(2, 44),
	))

	// Property: the year only appears past the two year bound
	properties.Property("year suffix", prop.ForAll(
		func(m int) bool {
			ts := base.Add(-time.Duration(m) * time.Minute)
			s, _, _ := Format(ts, base)
			withYear := s == ts.Format(DayMonthYear)
			return withYear == (m >= twoYearLimit)
		},
		gen.IntRange(hoursLimit, 3*twoYearLimit),
	))

	// Property: formatting is deterministic for a fixed now
	properties.Property("deterministic", prop.ForAll(
		func(sec int64) bool {
			a, _, _ := Format(sec, base)
			b, _, _ := Format(sec, base)
			return a == b
		},
		gen.Int64Range(1, base.Unix()),
	))

	properties.TestingRun(t)
}
