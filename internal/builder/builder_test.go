package builder

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFormatDatetimeIn(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	cases := []struct {
		in   string
		want string
	}{
		{"2024-12-25T14:30", "Wed, Dec 25, 2024, 2:30 PM"},
		{"2025-01-02T09:00", "Thu, Jan 2, 2025, 9:00 AM"},
		{"2025-03-10T00:05", "Mon, Mar 10, 2025, 12:05 AM"},
		{"2025-03-10T12:00", "Mon, Mar 10, 2025, 12:00 PM"},
		{"2025-03-10T12:00:59", "Mon, Mar 10, 2025, 12:00 PM"},
		{"2025-03-10T12:00:59.250", "Mon, Mar 10, 2025, 12:00 PM"},
		{"", InvalidDate},
		{"tomorrow", InvalidDate},
		{"2025-02-30T10:00", InvalidDate},
		{" 2025-01-02T09:00", InvalidDate},
	}
	for _, tc := range cases {
		if got := FormatDatetimeIn(tc.in, loc); got != tc.want {
			t.Fatalf("FormatDatetimeIn(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDatetimeIndependentOfZone(t *testing.T) {
	in := "2024-12-25T14:30"
	utc := FormatDatetimeIn(in, time.UTC)
	east := FormatDatetimeIn(in, time.FixedZone("UTC+9", 9*3600))
	if utc != east {
		t.Fatalf("wall-clock formatting should not shift with zone: %q vs %q", utc, east)
	}
}

func TestBuildReminderCommandScenario(t *testing.T) {
	got := BuildReminderCommand("@alice", "Ship release", "2025-01-02T09:00")
	want := `/remind @alice "Ship release" Thu, Jan 2, 2025, 9:00 AM`
	if got != want {
		t.Fatalf("BuildReminderCommand() = %q, want %q", got, want)
	}
}

func TestBuildReminderCommandInvalidDate(t *testing.T) {
	want := `/remind me "stretch" Invalid Date`
	for _, dt := range []string{"", "whenever", "2025-02-30T10:00", "2025-01-02T24:00", "2025-13-01T09:00"} {
		if got := BuildReminderCommand("me", "stretch", dt); got != want {
			t.Fatalf("BuildReminderCommand(%q) = %q, want %q", dt, got, want)
		}
	}
}

func TestBuildReminderCommandKeepsQuotes(t *testing.T) {
	got := BuildReminderCommand("#ops", `say "hi"`, "2025-01-02T09:00")
	if !strings.Contains(got, `"say "hi""`) {
		t.Fatalf("expected message to be inserted verbatim, got %q", got)
	}
	if !HasUnescapedQuote(`say "hi"`) {
		t.Fatalf("expected quote detection")
	}
	if HasUnescapedQuote("plain") {
		t.Fatalf("did not expect quote detection")
	}
}

func TestBuildReminderCommandIdempotent(t *testing.T) {
	a := BuildReminderCommand("@bob", "review", "2025-06-01T17:45")
	b := BuildReminderCommand("@bob", "review", "2025-06-01T17:45")
	if a != b {
		t.Fatalf("expected identical output, got %q and %q", a, b)
	}
}

func TestBuildInCombinesBothOutputs(t *testing.T) {
	in := Input{Recipient: "@alice", Message: "Ship release", Datetime: "2025-01-02T09:00"}
	res := BuildIn(in, "https://remind.example.com", "/app", time.UTC)
	if res.Command != `/remind @alice "Ship release" Thu, Jan 2, 2025, 9:00 AM` {
		t.Fatalf("unexpected command: %q", res.Command)
	}
	if res.Link != "https://remind.example.com/app?recipient=%40alice&message=Ship%20release&datetime=2025-01-02T09%3A00" {
		t.Fatalf("unexpected link: %q", res.Link)
	}
	if !res.ValidDate || res.Formatted != "Thu, Jan 2, 2025, 9:00 AM" {
		t.Fatalf("unexpected formatted=%q valid=%v", res.Formatted, res.ValidDate)
	}

	bad := BuildIn(Input{Recipient: "me", Message: "x", Datetime: "soon"}, "", "/", time.UTC)
	if bad.ValidDate || bad.Formatted != InvalidDate {
		t.Fatalf("expected invalid date result, got %+v", bad)
	}
}

func TestValidateMissingFields(t *testing.T) {
	if err := (Input{Recipient: "a", Message: "b", Datetime: "c"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := Input{Message: "b"}.Validate()
	var missing *MissingFieldsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingFieldsError, got %v", err)
	}
	if strings.Join(missing.Fields, ",") != "recipient,datetime" {
		t.Fatalf("unexpected missing fields: %v", missing.Fields)
	}
	if err.Error() != "missing required fields: recipient, datetime" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	one := Input{Recipient: "a", Message: "b"}.Validate()
	if one == nil || one.Error() != "missing required field: datetime" {
		t.Fatalf("unexpected single-field message: %v", one)
	}
}
