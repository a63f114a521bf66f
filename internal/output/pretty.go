package output

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/frgrisk/tidemark/internal/coremodel"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	remoteStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
)

// IsTTY reports whether fd is attached to a terminal, following the
// teacher's term.IsTerminal check for deciding between plain and decorated
// output (cmd/generate.go).
func IsTTY(fd uintptr) bool {
	return term.IsTerminal(int(fd))
}

// RenderReleaseListPretty renders a lightly column-aligned, colorized table
// for interactive terminals. Callers must fall back to FormatReleaseList
// whenever stdout is not a TTY; this function is never used to produce the
// machine-readable TSV.
func RenderReleaseListPretty(releases []coremodel.ReleaseTag) string {
	if len(releases) == 0 {
		return ""
	}

	nameWidth, anchorWidth := len("NAME"), len("ANCHOR")
	for _, r := range releases {
		if l := len(r.Tag.Name); l > nameWidth {
			nameWidth = l
		}
	}

	header := headerStyle.Render(padRight("NAME", nameWidth)) + "  " +
		headerStyle.Render(padRight("ANCHOR", anchorWidth)) + "  " +
		headerStyle.Render("COMMIT") + "  " +
		headerStyle.Render("KIND") + "  " +
		headerStyle.Render("SOURCE") + "\n"

	out := header
	for _, r := range releases {
		kind := "lightweight"
		if r.Tag.IsAnnotated {
			kind = "annotated"
		}
		source := "local"
		sourceCell := source
		if r.Tag.Source == coremodel.SourceRemote {
			source = "remote"
			sourceCell = remoteStyle.Render(source)
		}
		shortCommit := r.Tag.CommitID
		if len(shortCommit) > 12 {
			shortCommit = shortCommit[:12]
		}
		out += padRight(r.Tag.Name, nameWidth) + "  " +
			padRight(strconv.FormatUint(r.AnchorValue, 10), anchorWidth) + "  " +
			shortCommit + "  " +
			kind + "  " +
			sourceCell + "\n"
	}
	return out
}

func padRight(s string, width int) string {
	for len(s) < width {
		s += " "
	}
	return s
}

