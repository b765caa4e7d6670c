package clipboard

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
)

// OSC52 asks the terminal emulator to set its clipboard. Works over SSH
// where no local clipboard tool exists.
type OSC52 struct {
	w io.Writer
}

func NewOSC52(w io.Writer) *OSC52 { return &OSC52{w: w} }

func (c *OSC52) Name() string { return "osc52" }

func (c *OSC52) Doctor(context.Context) ([]contract.DoctorCheck, error) {
	if c.w == nil {
		return []contract.DoctorCheck{{Name: "clipboard", Status: "fail", Message: "no terminal writer for OSC 52"}}, fmt.Errorf("no terminal writer for OSC 52")
	}
	return []contract.DoctorCheck{{Name: "clipboard", Status: "ok", Message: "OSC 52 escape sequences (terminal support not verifiable)"}}, nil
}

func (c *OSC52) Copy(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.w == nil {
		return fmt.Errorf("no terminal writer for OSC 52")
	}
	_, err := fmt.Fprintf(c.w, "\x1b]52;c;%s\a", base64.StdEncoding.EncodeToString([]byte(text)))
	return err
}
