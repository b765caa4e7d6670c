package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/takeaship/slack-remind-command-constructor/internal/clipboard"
	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
	"github.com/takeaship/slack-remind-command-constructor/internal/web"
)

type fakeClipboard struct {
	checks    []contract.DoctorCheck
	doctorErr error
	copyErr   error
	block     bool
	copied    []string
}

func (f *fakeClipboard) Name() string { return "fake" }

func (f *fakeClipboard) Doctor(ctx context.Context) ([]contract.DoctorCheck, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.checks, f.doctorErr
}

func (f *fakeClipboard) Copy(ctx context.Context, text string) error {
	if f.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.copyErr != nil {
		return f.copyErr
	}
	f.copied = append(f.copied, text)
	return nil
}

func useClipboard(t *testing.T, cb clipboard.Clipboard) {
	t.Helper()
	orig := clipboardFactory
	clipboardFactory = func(string, io.Writer) (clipboard.Clipboard, error) { return cb, nil }
	t.Cleanup(func() { clipboardFactory = orig })
}

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const (
	scenarioCommand = `/remind @alice "Ship release" Thu, Jan 2, 2025, 9:00 AM`
	scenarioLink    = "http://localhost:8080/?recipient=%40alice&message=Ship%20release&datetime=2025-01-02T09%3A00"
)

func TestBuildPlainPrintsCommandThenLink(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, errOut, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--plain")
	if err != nil {
		t.Fatalf("build failed: %v stderr=%q", err, errOut)
	}
	if want := scenarioCommand + "\n" + scenarioLink + "\n"; out != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out, want)
	}
	if errOut != "" {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestBuildJSONGolden(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, errOut, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--json", "--no-history")
	if err != nil {
		t.Fatalf("build failed: %v stderr=%q", err, errOut)
	}
	assertGoldenJSON(t, "build", normalizeEnvelopeJSON(t, []byte(out)))
}

func TestParseJSONGolden(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, errOut, err := runRoot(t, "parse", "https://remind.example/?recipient=me&message=hi+there", "--json")
	if err != nil {
		t.Fatalf("parse failed: %v stderr=%q", err, errOut)
	}
	assertGoldenJSON(t, "parse", normalizeEnvelopeJSON(t, []byte(out)))
}

func TestBuildMissingFields(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, errOut, err := runRoot(t, "build", "-r", "me", "--json")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
	if out != "" {
		t.Fatalf("expected no stdout, got %q", out)
	}
	var env contract.ErrorEnvelope
	if err := json.Unmarshal([]byte(errOut), &env); err != nil {
		t.Fatalf("expected one JSON error envelope, got %q: %v", errOut, err)
	}
	if env.Error.Code != contract.ErrMissingField {
		t.Fatalf("unexpected code: %s", env.Error.Code)
	}
	if env.Error.Message != "missing required fields: message, datetime" {
		t.Fatalf("unexpected message: %q", env.Error.Message)
	}
}

func TestBuildInvalidDate(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})

	_, errOut, err := runRoot(t, "build", "-r", "me", "-m", "stretch", "-d", "whenever", "--plain")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
	if !strings.Contains(errOut, `unparseable datetime: "whenever"`) {
		t.Fatalf("unexpected stderr: %q", errOut)
	}

	out, errOut, err := runRoot(t, "build", "-r", "me", "-m", "stretch", "-d", "whenever", "--plain", "--allow-invalid-date")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.HasPrefix(out, `/remind me "stretch" Invalid Date`+"\n") {
		t.Fatalf("expected sentinel command, got %q", out)
	}
	if !strings.Contains(errOut, "warning: datetime \"whenever\" did not parse") {
		t.Fatalf("expected invalid date warning, got %q", errOut)
	}
}

func TestBuildRejectsImpossibleCalendarDate(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})

	for _, in := range []string{"2025-02-30T10:00", "2025-01-02T24:00"} {
		out, errOut, err := runRoot(t, "build", "-r", "me", "-m", "x", "-d", in, "--plain")
		if code := ExitCode(err); code != 2 {
			t.Fatalf("%s: exit code mismatch: got=%d want=2 stdout=%q", in, code, out)
		}
		if out != "" {
			t.Fatalf("%s: expected no command on stdout, got %q", in, out)
		}
		if !strings.Contains(errOut, `unparseable datetime: "`+in+`"`) {
			t.Fatalf("%s: unexpected stderr: %q", in, errOut)
		}
	}
	if _, err := os.Stat(historyFilePath()); !os.IsNotExist(err) {
		t.Fatalf("rejected builds must not be recorded: %v", err)
	}
}

func TestBuildNormalizesRelativeDatetime(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	orig := nowFunc
	nowFunc = func() time.Time { return time.Date(2025, 1, 1, 17, 45, 0, 0, time.Local) }
	t.Cleanup(func() { nowFunc = orig })

	out, _, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "tomorrow 09:00", "--plain")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if want := scenarioCommand + "\n" + scenarioLink + "\n"; out != want {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestBuildQuoteWarning(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, errOut, err := runRoot(t, "build", "-r", "me", "-m", `say "hi"`, "-d", "2025-01-02T09:00", "--plain")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.HasPrefix(out, `/remind me "say "hi"" Thu, Jan 2, 2025, 9:00 AM`) {
		t.Fatalf("quotes must pass through unescaped, got %q", out)
	}
	if !strings.Contains(errOut, "double quotes") {
		t.Fatalf("expected quote warning, got %q", errOut)
	}
}

func TestBuildFromLinkWithOverride(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	out, _, err := runRoot(t, "build", "--from-link", scenarioLink, "-m", "Tag release", "--plain")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.HasPrefix(out, `/remind @alice "Tag release" Thu, Jan 2, 2025, 9:00 AM`) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestBuildCopy(t *testing.T) {
	isolateHome(t)
	fc := &fakeClipboard{}
	useClipboard(t, fc)
	out, _, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--copy", "--json")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(fc.copied) != 1 || fc.copied[0] != scenarioCommand {
		t.Fatalf("unexpected copies: %q", fc.copied)
	}
	var env struct {
		Data contract.ReminderResult `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Copied != "command" {
		t.Fatalf("expected copied=command, got %q", env.Data.Copied)
	}

	fc.copied = nil
	if _, _, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--copy-link", "--json"); err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(fc.copied) != 1 || fc.copied[0] != scenarioLink {
		t.Fatalf("unexpected copies: %q", fc.copied)
	}

	_, _, err = runRoot(t, "build", "-r", "@alice", "-m", "x", "-d", "2025-01-02T09:00", "--copy", "--copy-link")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("expected usage error for both copy flags, got %d", code)
	}
}

func TestBuildCopyFailureIsWarning(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{copyErr: errors.New("xclip failed: Can't open display")})
	out, errOut, err := runRoot(t, "build", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--copy", "--plain")
	if err != nil {
		t.Fatalf("copy failure must not fail the command: %v", err)
	}
	if want := scenarioCommand + "\n" + scenarioLink + "\n"; out != want {
		t.Fatalf("output changed by copy failure: %q", out)
	}
	if !strings.Contains(errOut, "warning: command not copied (fake): xclip failed: Can't open display") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestBuildCopyTimeoutIncludesPhase(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{block: true})
	out, errOut, err := runRoot(t, "build", "-r", "me", "-m", "x", "-d", "2025-01-02T09:00", "--copy", "--timeout", "1ns", "--plain")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if !strings.HasPrefix(out, `/remind me "x"`) {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(errOut, "clipboard.copy timed out") || !strings.Contains(errOut, "(fake)") {
		t.Fatalf("expected clipboard phase timeout, got %q", errOut)
	}

	out, _, err = runRoot(t, "build", "-r", "me", "-m", "x", "-d", "2025-01-02T09:00", "--copy", "--timeout", "1ns", "--json", "--verbose", "--no-history")
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	var env struct {
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	ce, ok := env.Meta["clipboard_error"].(map[string]any)
	if !ok || ce["tool"] != "fake" || ce["op"] != "copy" || ce["kind"] != "timeout" {
		t.Fatalf("unexpected clipboard_error meta: %v", env.Meta)
	}
}

func TestLinkCommand(t *testing.T) {
	isolateHome(t)
	fc := &fakeClipboard{}
	useClipboard(t, fc)
	out, errOut, err := runRoot(t, "link", "-r", "@alice", "-m", "Ship release", "-d", "2025-01-02T09:00", "--copy", "--plain")
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if out != scenarioLink+"\n" {
		t.Fatalf("unexpected link: %q", out)
	}
	if errOut != "" {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
	if len(fc.copied) != 1 || fc.copied[0] != scenarioLink {
		t.Fatalf("unexpected copies: %q", fc.copied)
	}

	out, errOut, err = runRoot(t, "link", "-r", "me", "--origin", "https://remind.example", "--path", "/form", "--plain")
	if err != nil {
		t.Fatalf("link failed: %v", err)
	}
	if out != "https://remind.example/form?recipient=me&message=&datetime=\n" {
		t.Fatalf("unexpected link: %q", out)
	}
	if !strings.Contains(errOut, "empty fields in link: message, datetime") {
		t.Fatalf("expected empty-field warning, got %q", errOut)
	}
}

func TestParseInvalidLink(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	_, _, err := runRoot(t, "parse", "http://x/?message=%zz")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
}

func TestHistoryRecordsBuilds(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{})
	for _, msg := range []string{"first", "second", "third"} {
		if _, _, err := runRoot(t, "build", "-r", "me", "-m", msg, "-d", "2025-01-02T09:00", "--json"); err != nil {
			t.Fatalf("build failed: %v", err)
		}
	}
	if _, _, err := runRoot(t, "build", "-r", "me", "-m", "skipped", "-d", "2025-01-02T09:00", "--json", "--no-history"); err != nil {
		t.Fatalf("build failed: %v", err)
	}

	out, _, err := runRoot(t, "history", "list", "--limit", "2", "--json")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	var env struct {
		Data []contract.HistoryEntry `json:"data"`
		Meta map[string]any          `json:"meta"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatal(err)
	}
	if len(env.Data) != 2 || env.Data[0].Input.Message != "third" || env.Data[1].Input.Message != "second" {
		t.Fatalf("expected newest first, got %+v", env.Data)
	}
	if env.Data[0].ID == "" || env.Data[0].ID == env.Data[1].ID {
		t.Fatalf("expected distinct ids, got %q and %q", env.Data[0].ID, env.Data[1].ID)
	}
	if env.Meta["has_more"] != true {
		t.Fatalf("expected has_more, got %v", env.Meta)
	}

	out, _, err = runRoot(t, "history", "list", "--plain", "--time-format", "%Y")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 || !strings.HasSuffix(lines[0], `/remind me "third" Thu, Jan 2, 2025, 9:00 AM`) {
		t.Fatalf("unexpected plain history: %q", out)
	}
	if !strings.HasPrefix(lines[0], time.Now().Format("2006")+"\t") {
		t.Fatalf("expected strftime year prefix, got %q", lines[0])
	}

	out, _, err = runRoot(t, "history", "show", env.Data[1].ID[:8], "--plain")
	if err != nil {
		t.Fatalf("history show failed: %v", err)
	}
	if !strings.HasPrefix(out, `/remind me "second" Thu, Jan 2, 2025, 9:00 AM`+"\n") {
		t.Fatalf("unexpected show output: %q", out)
	}
	_, _, err = runRoot(t, "history", "show", "no-such-id")
	if code := ExitCode(err); code != 4 {
		t.Fatalf("exit code mismatch: got=%d want=4", code)
	}

	out, _, err = runRoot(t, "history", "clear", "--plain")
	if err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	if out != "cleared 3 entries\n" {
		t.Fatalf("unexpected clear output: %q", out)
	}
	out, _, err = runRoot(t, "history", "list", "--plain")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if out != "no history\n" {
		t.Fatalf("expected empty history, got %q", out)
	}
}

func TestReadHistoryPageSkipsCorruptLines(t *testing.T) {
	isolateHome(t)
	if err := appendHistory(contract.HistoryEntry{Command: "/remind me \"a\" x"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(historyFilePath(), os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()
	if err := appendHistory(contract.HistoryEntry{Command: "/remind me \"b\" x"}); err != nil {
		t.Fatal(err)
	}

	entries, hasMore, err := readHistoryPage(10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if hasMore || len(entries) != 2 || entries[0].Command != `/remind me "b" x` {
		t.Fatalf("unexpected page: %+v hasMore=%v", entries, hasMore)
	}
	entries, _, err = readHistoryPage(10, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Command != `/remind me "a" x` {
		t.Fatalf("unexpected offset page: %+v", entries)
	}
}

func TestHistoryTimeHumanized(t *testing.T) {
	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	if got := historyTime(now.Add(-3*time.Minute), "", now); got != "3 minutes ago" {
		t.Fatalf("unexpected age: %q", got)
	}
}

func TestDoctorReadyAndNotReady(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{checks: []contract.DoctorCheck{{Name: "clipboard", Status: "ok", Message: "fake"}}})
	out, _, err := runRoot(t, "doctor", "--json")
	if err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out, "\"command\": \"doctor\"") {
		t.Fatalf("unexpected doctor output: %q", out)
	}

	useClipboard(t, &fakeClipboard{
		checks:    []contract.DoctorCheck{{Name: "clipboard", Status: "fail", Message: "xclip not found in PATH"}},
		doctorErr: errors.New("xclip not found in PATH"),
	})
	out, errOut, err := runRoot(t, "doctor", "--plain")
	if code := ExitCode(err); code != 6 {
		t.Fatalf("exit code mismatch: got=%d want=6", code)
	}
	if !strings.Contains(out, "ready=false") || !strings.Contains(out, "reasons=clipboard_fail,doctor_error") {
		t.Fatalf("unexpected doctor output: %q", out)
	}
	if strings.Count(errOut, "error:") != 1 {
		t.Fatalf("expected a single error line, got %q", errOut)
	}
}

func TestDoctorDisabledClipboardIsReady(t *testing.T) {
	isolateHome(t)
	out, _, err := runRoot(t, "doctor", "--clipboard", "none", "--plain")
	if err != nil {
		t.Fatalf("doctor failed: %v", err)
	}
	if !strings.Contains(out, "ready=true") || !strings.Contains(out, "[disabled] clipboard") {
		t.Fatalf("unexpected doctor output: %q", out)
	}
}

func TestDoctorTimeoutIncludesPhase(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{block: true})
	_, errOut, err := runRoot(t, "doctor", "--timeout", "1ns", "--json")
	if code := ExitCode(err); code != 6 {
		t.Fatalf("exit code mismatch: got=%d want=6", code)
	}
	if !strings.Contains(errOut, "clipboard.doctor timed out") {
		t.Fatalf("expected clipboard phase timeout, got %q", errOut)
	}
}

func TestStatusReportsResolvedConfig(t *testing.T) {
	isolateHome(t)
	useClipboard(t, &fakeClipboard{checks: []contract.DoctorCheck{{Name: "clipboard", Status: "ok"}}})
	t.Setenv("REMINDCMD_ORIGIN", "https://remind.example")
	out, _, err := runRoot(t, "status", "--json", "--no-history")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	var env struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatal(err)
	}
	if env.Data["origin"] != "https://remind.example" || env.Data["history"] != "disabled" || env.Data["ready"] != true {
		t.Fatalf("unexpected status: %v", env.Data)
	}
}

func TestUnknownClipboardIsUsageError(t *testing.T) {
	isolateHome(t)
	_, errOut, err := runRoot(t, "build", "-r", "me", "-m", "x", "-d", "2025-01-02T09:00", "--clipboard", "carrier-pigeon")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
	if !strings.Contains(errOut, "unknown clipboard: carrier-pigeon") {
		t.Fatalf("unexpected stderr: %q", errOut)
	}
}

func TestConflictingOutputFlags(t *testing.T) {
	isolateHome(t)
	_, _, err := runRoot(t, "link", "--json", "--plain")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
}

func TestServeBuildsServerFromOptions(t *testing.T) {
	isolateHome(t)
	logFile := filepath.Join(t.TempDir(), "serve.log")
	var served *web.Server
	orig := runServer
	runServer = func(_ context.Context, srv *web.Server) error {
		served = srv
		return nil
	}
	t.Cleanup(func() { runServer = orig })

	_, errOut, err := runRoot(t, "serve", "--addr", "127.0.0.1:0", "--log-file", logFile, "--rate-per-min", "0")
	if err != nil {
		t.Fatalf("serve failed: %v stderr=%q", err, errOut)
	}
	if served == nil {
		t.Fatalf("expected server to run")
	}
	w := httptest.NewRecorder()
	served.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/command?recipient=me&message=tea&datetime=2025-01-02T09:00", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `/remind me \"tea\" Thu, Jan 2, 2025, 9:00 AM`) {
		t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
	}
	raw, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(raw), "HTTP request completed") {
		t.Fatalf("expected request log line, got %q", string(raw))
	}
}

func TestServeRejectsNegativeRate(t *testing.T) {
	isolateHome(t)
	_, _, err := runRoot(t, "serve", "--rate-per-min", "-1")
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
}

func TestVersionCommand(t *testing.T) {
	withStamp(t, stamped, readBuildInfo)
	SetBuildInfo("v9.9.9", "abc", "2026-02-17T00:00:00Z")
	out, _, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if !strings.Contains(out, "remindcmd v9.9.9 (abc) 2026-02-17T00:00:00Z") {
		t.Fatalf("unexpected version output: %q", out)
	}

	out, _, err = runRoot(t, "version", "--json")
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	var env struct {
		Data buildInfo `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &env); err != nil {
		t.Fatalf("decode: %v (%q)", err, out)
	}
	if env.Data.Version != "v9.9.9" || env.Data.Commit != "abc" || env.Data.GoVersion == "" {
		t.Fatalf("unexpected version data: %+v", env.Data)
	}
}

func TestCompletionInvalidShellExitCode(t *testing.T) {
	_, _, err := runRoot(t, "completion", "tcsh")
	if err == nil {
		t.Fatalf("expected error")
	}
	if code := ExitCode(err); code != 2 {
		t.Fatalf("exit code mismatch: got=%d want=2", code)
	}
}

func normalizeEnvelopeJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		t.Fatalf("json unmarshal failed: %v\nraw=%s", err, string(raw))
	}
	if _, ok := obj["generated_at"]; ok {
		obj["generated_at"] = "<generated>"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(obj); err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}
	return buf.String()
}

func assertGoldenJSON(t *testing.T, name, got string) {
	t.Helper()
	path := filepath.Join("testdata", "golden", name+".json")
	if os.Getenv("UPDATE_GOLDEN") == "1" {
		if err := os.WriteFile(path, []byte(got), 0o644); err != nil {
			t.Fatalf("write golden %s: %v", path, err)
		}
	}
	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden %s: %v", path, err)
	}
	if got != string(want) {
		t.Fatalf("golden mismatch for %s\n--- got ---\n%s\n--- want ---\n%s", name, got, string(want))
	}
}
