// Package timefmt normalizes human-entered time strings into a canonical
// 12-hour display form and computes minute-of-day differences.
package timefmt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Unknown is returned for anything that cannot be parsed as a time of day.
const Unknown = "unknown"

var (
	clockPattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})(?::(\d{2}))?\s*(AM|PM)?`)
	barePattern  = regexp.MustCompile(`^\d{1,4}$`)
)

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006 3:04:05 PM",
	"01/02/2006 15:04:05",
}

// Normalize converts raw into "HH:MM:SS AM/PM" (two-digit hour 01-12) or
// returns Unknown. Accepted inputs: full date-times, clock strings with
// optional seconds and AM/PM, and bare 1-4 digit tokens where the last two
// digits are minutes ("930" -> "09:30:00 AM").
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Unknown
	}

	for _, layout := range dateTimeLayouts {
		if dt, err := time.Parse(layout, s); err == nil {
			return dt.Format("03:04:05 PM")
		}
	}

	if m := clockPattern.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		second := 0
		if m[3] != "" {
			second, _ = strconv.Atoi(m[3])
		}

		period := strings.ToUpper(m[4])
		switch period {
		case "PM":
			if hour != 12 {
				hour += 12
			}
		case "AM":
			if hour == 12 {
				hour = 0
			}
		default:
			// Bare clock value, treat the hour as 24-hour.
			if hour < 0 || hour > 23 {
				return Unknown
			}
		}

		if minute > 59 || second > 59 {
			return Unknown
		}

		return formatDisplay(hour, minute, second)
	}

	if barePattern.MatchString(s) {
		if len(s) >= 3 {
			hour, _ := strconv.Atoi(s[:len(s)-2])
			minute, _ := strconv.Atoi(s[len(s)-2:])
			return Normalize(fmt.Sprintf("%d:%02d:00", hour, minute))
		}

		hour, _ := strconv.Atoi(s)
		return Normalize(fmt.Sprintf("%d:00:00", hour))
	}

	return Unknown
}

func formatDisplay(hour24, minute, second int) string {
	period := "AM"
	displayHour := hour24

	switch {
	case hour24 == 0:
		displayHour = 12
	case hour24 == 12:
		period = "PM"
	case hour24 > 12:
		displayHour = hour24 - 12
		period = "PM"
	}

	return fmt.Sprintf("%02d:%02d:%02d %s", displayHour, minute, second, period)
}

// MinutesOfDay converts a normalized or raw time string to minutes since
// midnight (0-1439). ok is false when the value does not normalize.
func MinutesOfDay(raw string) (int, bool) {
	normalized := Normalize(raw)
	if normalized == Unknown {
		return 0, false
	}

	parts := strings.SplitN(normalized, " ", 2)
	hms := strings.Split(parts[0], ":")

	hours, _ := strconv.Atoi(hms[0])
	minutes, _ := strconv.Atoi(hms[1])

	period := "AM"
	if len(parts) > 1 {
		period = parts[1]
	}

	if period == "PM" && hours != 12 {
		hours += 12
	} else if period == "AM" && hours == 12 {
		hours = 0
	}

	return hours*60 + minutes, true
}

// DifferenceMinutes returns the absolute minute-of-day difference between two
// time strings. ok is false when either input is empty or does not normalize.
// Symmetric in its arguments.
func DifferenceMinutes(a, b string) (int, bool) {
	if strings.TrimSpace(a) == "" || strings.TrimSpace(b) == "" {
		return 0, false
	}

	ma, okA := MinutesOfDay(a)
	mb, okB := MinutesOfDay(b)
	if !okA || !okB {
		return 0, false
	}

	diff := ma - mb
	if diff < 0 {
		diff = -diff
	}

	return diff, true
}
