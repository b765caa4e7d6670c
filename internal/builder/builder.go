// Package builder turns the three reminder fields into a Slack /remind
// command and a shareable link that pre-fills the same fields.
//
// Everything here is a pure function of its arguments.
package builder

import (
	"fmt"
	"strings"
	"time"
)

// InvalidDate is returned in place of a formatted date when the input does
// not parse. It propagates into the command unchanged.
const InvalidDate = "Invalid Date"

// DisplayLayout renders like en-US toLocaleString with short weekday and
// month, numeric day and year and a 12-hour clock.
const DisplayLayout = "Mon, Jan 2, 2006, 3:04 PM"

// DatetimeLocalLayout is the value format of an HTML datetime-local input.
const DatetimeLocalLayout = "2006-01-02T15:04"

var datetimeLocalLayouts = []string{
	DatetimeLocalLayout,
	"2006-01-02T15:04:05",
}

type Input struct {
	Recipient string `json:"recipient" form:"recipient" validate:"required"`
	Message   string `json:"message" form:"message" validate:"required"`
	Datetime  string `json:"datetime" form:"datetime" validate:"required"`
}

type Result struct {
	Input     Input
	Formatted string
	Command   string
	Link      string
	ValidDate bool
}

// ParseDatetime reads a datetime-local value as wall-clock time in loc.
func ParseDatetime(datetimeLocal string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range datetimeLocalLayouts {
		if ts, err := time.ParseInLocation(layout, datetimeLocal, loc); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

func FormatDatetime(datetimeLocal string) string {
	return FormatDatetimeIn(datetimeLocal, time.Local)
}

func FormatDatetimeIn(datetimeLocal string, loc *time.Location) string {
	ts, ok := ParseDatetime(datetimeLocal, loc)
	if !ok {
		return InvalidDate
	}
	return ts.Format(DisplayLayout)
}

// BuildReminderCommand does not escape double quotes inside message.
func BuildReminderCommand(recipient, message, datetimeLocal string) string {
	return buildCommand(recipient, message, FormatDatetime(datetimeLocal))
}

func buildCommand(recipient, message, formatted string) string {
	return fmt.Sprintf("/remind %s \"%s\" %s", recipient, message, formatted)
}

// HasUnescapedQuote reports whether message would break out of the quoted
// section of the command.
func HasUnescapedQuote(message string) bool {
	return strings.Contains(message, `"`)
}

// Build runs both builders over one input.
func Build(in Input, origin, path string) Result {
	return BuildIn(in, origin, path, time.Local)
}

func BuildIn(in Input, origin, path string, loc *time.Location) Result {
	formatted := FormatDatetimeIn(in.Datetime, loc)
	return Result{
		Input:     in,
		Formatted: formatted,
		Command:   buildCommand(in.Recipient, in.Message, formatted),
		Link:      BuildShareableLink(origin, path, in.Recipient, in.Message, in.Datetime),
		ValidDate: formatted != InvalidDate,
	}
}

// Warnings describes output that assembled but may not do what the user
// meant: the invalid-date sentinel and unescaped quotes.
func (r Result) Warnings() []string {
	out := []string{}
	if !r.ValidDate {
		out = append(out, fmt.Sprintf("datetime %q did not parse; command contains %q", r.Input.Datetime, InvalidDate))
	}
	if HasUnescapedQuote(r.Input.Message) {
		out = append(out, "message contains double quotes; Slack may split the reminder text")
	}
	return out
}
