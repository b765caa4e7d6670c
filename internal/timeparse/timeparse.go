package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const datetimeLocalLayout = "2006-01-02T15:04"

var (
	clockRe         = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)
	datetimeLocalRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`)
)

func ParseDateTime(input string, now time.Time, loc *time.Location) (time.Time, error) {
	s := strings.TrimSpace(strings.ToLower(input))
	if s == "" {
		return time.Time{}, fmt.Errorf("empty time")
	}

	if day, clock, ok := strings.Cut(s, " "); ok && clockRe.MatchString(strings.TrimSpace(clock)) {
		base, err := parseDay(day, now, loc)
		if err == nil {
			return atClock(base, strings.TrimSpace(clock))
		}
	}
	if v, err := parseDay(s, now, loc); err == nil {
		return v, nil
	}
	if v, ok, err := parseOffset(s, now, loc); ok {
		return v, err
	}

	layouts := []string{
		time.RFC3339,
		datetimeLocalLayout,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
	for _, layout := range layouts {
		if ts, err := time.ParseInLocation(layout, strings.TrimSpace(input), loc); err == nil {
			return ts.In(loc), nil
		}
	}

	return time.Time{}, fmt.Errorf("unsupported datetime format: %s", input)
}

// ToDatetimeLocal formats t the way an HTML datetime-local input does.
func ToDatetimeLocal(t time.Time) string {
	return t.Format(datetimeLocalLayout)
}

// Normalize keeps valid datetime-local values byte-for-byte and rewrites
// anything else ParseDateTime understands into that form.
func Normalize(input string, now time.Time, loc *time.Location) (string, error) {
	if datetimeLocalRe.MatchString(input) {
		for _, layout := range []string{datetimeLocalLayout, "2006-01-02T15:04:05"} {
			if _, err := time.ParseInLocation(layout, input, loc); err == nil {
				return input, nil
			}
		}
		return "", fmt.Errorf("invalid datetime: %s", input)
	}
	ts, err := ParseDateTime(input, now, loc)
	if err != nil {
		return "", err
	}
	return ToDatetimeLocal(ts), nil
}

func parseDay(s string, now time.Time, loc *time.Location) (time.Time, error) {
	y, m, d := now.In(loc).Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)
	switch s {
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDate(0, 0, 1), nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	if (strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-")) && strings.HasSuffix(s, "d") {
		n, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid relative day: %s", s)
		}
		return today.AddDate(0, 0, n), nil
	}
	if ts, err := time.ParseInLocation("2006-01-02", s, loc); err == nil {
		return ts, nil
	}
	return time.Time{}, fmt.Errorf("not a day: %s", s)
}

func parseOffset(s string, now time.Time, loc *time.Location) (time.Time, bool, error) {
	if !strings.HasPrefix(s, "+") && !strings.HasPrefix(s, "-") {
		return time.Time{}, false, nil
	}
	if !strings.HasSuffix(s, "h") && !strings.HasSuffix(s, "m") {
		return time.Time{}, false, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Time{}, true, fmt.Errorf("invalid relative offset: %s", s)
	}
	return now.In(loc).Add(d).Truncate(time.Minute), true, nil
}

func atClock(day time.Time, clock string) (time.Time, error) {
	m := clockRe.FindStringSubmatch(clock)
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("invalid clock: %s", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), nil
}
