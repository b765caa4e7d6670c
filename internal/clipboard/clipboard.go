// Package clipboard copies generated text to the system clipboard. Callers
// treat every failure as non-fatal.
package clipboard

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/takeaship/slack-remind-command-constructor/internal/contract"
)

type Clipboard interface {
	Name() string
	Doctor(context.Context) ([]contract.DoctorCheck, error)
	Copy(ctx context.Context, text string) error
}

// Tool is an external program that reads the text to copy from stdin.
type Tool struct {
	Name    string
	Command string
	Args    []string
}

// KnownTools in auto-detection order.
var KnownTools = []Tool{
	{Name: "pbcopy", Command: "pbcopy"},
	{Name: "wl-copy", Command: "wl-copy"},
	{Name: "xclip", Command: "xclip", Args: []string{"-selection", "clipboard"}},
	{Name: "xsel", Command: "xsel", Args: []string{"--clipboard", "--input"}},
	{Name: "clip.exe", Command: "clip.exe"},
}

var lookPath = exec.LookPath

// New resolves a clipboard by name: auto, a KnownTools name, osc52 or none.
// term receives the OSC 52 escape sequence.
func New(name string, term io.Writer) (Clipboard, error) {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "", "auto":
		if tool, ok := detect(); ok {
			return NewExecClipboard(tool), nil
		}
		return &missingClipboard{}, nil
	case "osc52":
		return NewOSC52(term), nil
	case "none", "off":
		return Nop{}, nil
	default:
		for _, tool := range KnownTools {
			if tool.Name == n {
				return NewExecClipboard(tool), nil
			}
		}
		return nil, fmt.Errorf("unknown clipboard: %s", name)
	}
}

func detect() (Tool, bool) {
	for _, tool := range KnownTools {
		if _, err := lookPath(tool.Command); err == nil {
			return tool, true
		}
	}
	return Tool{}, false
}

type Nop struct{}

func (Nop) Name() string { return "none" }

func (Nop) Doctor(context.Context) ([]contract.DoctorCheck, error) {
	return []contract.DoctorCheck{{Name: "clipboard", Status: "disabled", Message: "clipboard disabled by configuration"}}, nil
}

func (Nop) Copy(context.Context, string) error { return nil }

// missingClipboard stands in when auto-detection finds no tool, so the
// failure surfaces at copy time rather than at startup.
type missingClipboard struct{}

func (*missingClipboard) Name() string { return "auto" }

func (*missingClipboard) Doctor(context.Context) ([]contract.DoctorCheck, error) {
	names := make([]string, 0, len(KnownTools))
	for _, tool := range KnownTools {
		names = append(names, tool.Command)
	}
	msg := "no clipboard tool found in PATH (tried " + strings.Join(names, ", ") + ")"
	return []contract.DoctorCheck{{Name: "clipboard", Status: "fail", Message: msg}}, fmt.Errorf("%s", msg)
}

func (*missingClipboard) Copy(context.Context, string) error {
	return fmt.Errorf("no clipboard tool available")
}
