// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/validation"
)

const title = "DNS Advisor Report"

// WriteText renders r for humans. Styling is applied only when w is a
// terminal.
func (r *Report) WriteText(w io.Writer) error {
	re := lipgloss.NewRenderer(w)
	var (
		titleStyle     = re.NewStyle().Bold(true)
		headingStyle   = re.NewStyle().Bold(true)
		recommendStyle = re.NewStyle().Foreground(lipgloss.Color("9"))
		dimStyle       = re.NewStyle().Faint(true)
	)

	var b strings.Builder
	b.WriteString(titleStyle.Render(title) + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n")
	if r.RunID != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("run %s  model %s  %s",
			r.RunID, r.ModelType, r.GeneratedAt.UTC().Format(time.RFC3339))) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Summary:") + "\n")
	fmt.Fprintf(&b, "- total: %d\n", r.Summary.Total)
	fmt.Fprintf(&b, "- recommended: %d\n", r.Summary.Recommended)
	fmt.Fprintf(&b, "- learned: %d\n", r.Summary.Learned)
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("Findings:") + "\n")
	if len(r.Items) == 0 {
		b.WriteString(dimStyle.Render("(none)") + "\n")
	}
	for _, it := range r.Items {
		flags := strings.Join(it.Flags.Active(), ",")
		if flags == "" {
			flags = "-"
		}
		decision := it.Decision
		if decision == "recommend" {
			decision = recommendStyle.Render(decision)
		}
		fmt.Fprintf(&b, "%s %s %s %s score=%.2f %s flags=%s\n",
			it.Timestamp.Format(time.RFC3339), validation.Printable(it.Client), validation.Printable(it.Domain),
			it.QType, it.Score, decision, flags)
	}

	if len(r.Candidates) > 0 {
		b.WriteString("\n")
		b.WriteString(headingStyle.Render("Auto-Block Candidates (not enforced):") + "\n")
		for _, c := range r.Candidates {
			fmt.Fprintf(&b, "- %s\n", validation.Printable(c))
		}
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return errors.Wrap(err, errors.KindIO, "write text report")
	}
	return nil
}
