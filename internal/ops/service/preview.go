package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// RenderPreview renders plan as a fenced-code-block markdown document,
// following the teacher's glamour terminal-rendering setup (auto style on
// a TTY, word-wrapped to detected width, "notty" style otherwise). Used
// only by `service plan` as a human convenience; the raw Plan fields
// remain the source of truth for scripting and for service install/
// uninstall.
func RenderPreview(plan Plan) (string, error) {
	isTerminal := term.IsTerminal(int(os.Stdout.Fd()))

	style := "auto"
	if !isTerminal {
		style = "notty"
	}

	width := uint(80)
	if isTerminal {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
			width = uint(w)
			if width > 120 {
				width = 120
			}
		}
	}

	var opt glamour.TermRendererOption
	if style == "auto" {
		opt = glamour.WithEnvironmentConfig()
	} else {
		opt = glamour.WithStylePath(style)
	}

	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(int(width)), glamour.WithPreservedNewLines())
	if err != nil {
		return "", err
	}

	doc := fmt.Sprintf(
		"# service plan: %s\n\n**service file:** `%s`\n\n```ini\n%s```\n\n**timer file:** `%s`\n\n```ini\n%s```\n",
		plan.UnitName, plan.ServiceFile, plan.ServiceContent, plan.TimerFile, plan.TimerContent,
	)
	return r.Render(strings.TrimRight(doc, "\n") + "\n")
}
