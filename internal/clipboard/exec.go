package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
)

type ExecClipboard struct {
	tool Tool
}

func NewExecClipboard(tool Tool) *ExecClipboard { return &ExecClipboard{tool: tool} }

func (c *ExecClipboard) Name() string { return c.tool.Name }

func (c *ExecClipboard) Doctor(context.Context) ([]contract.DoctorCheck, error) {
	path, err := lookPath(c.tool.Command)
	if err != nil {
		msg := fmt.Sprintf("%s not found in PATH", c.tool.Command)
		return []contract.DoctorCheck{{Name: "clipboard", Status: "fail", Message: msg}}, fmt.Errorf("%s", msg)
	}
	return []contract.DoctorCheck{{Name: "clipboard", Status: "ok", Message: fmt.Sprintf("%s found at %s", c.tool.Name, path)}}, nil
}

// waitDelay bounds how long Copy waits for pipes held open by a tool that
// forks to keep owning the selection.
var waitDelay = 500 * time.Millisecond

// Copy leaves stdout unattached and sends stderr to a file, so a forked
// selection owner (xclip, wl-copy) cannot hold Wait open.
func (c *ExecClipboard) Copy(ctx context.Context, text string) error {
	stderr, err := os.CreateTemp("", "remindcmd-clipboard-*")
	if err != nil {
		return fmt.Errorf("%s: %w", c.tool.Name, err)
	}
	defer os.Remove(stderr.Name())
	defer stderr.Close()

	cmd := exec.CommandContext(ctx, c.tool.Command, c.tool.Args...)
	cmd.Stdin = strings.NewReader(text)
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	err = cmd.Run()
	if errors.Is(err, exec.ErrWaitDelay) {
		err = nil
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		msg := ""
		if _, serr := stderr.Seek(0, io.SeekStart); serr == nil {
			b, _ := io.ReadAll(io.LimitReader(stderr, 4096))
			msg = strings.TrimSpace(string(b))
		}
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("%s failed: %s", c.tool.Name, msg)
	}
	return nil
}
