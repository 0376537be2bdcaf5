// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/dnsadvisor/internal/clock"
	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/tui"
	"grimm.is/dnsadvisor/internal/validation"
	"grimm.is/dnsadvisor/internal/verdictlog"
)

const browseLimit = 1000

// RunHistory implements 'dnsadvisor history'.
func RunHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	dbPath := fs.String("db", "", "Verdict log database (required)")
	since := fs.Duration("since", 24*time.Hour, "Summarize verdicts newer than this")
	limit := fs.Int("limit", 10, "Number of runs and recent verdicts to show")
	search := fs.String("search", "", "Only show recent verdicts whose domain or client contains this")
	browse := fs.Bool("tui", false, "Browse recent verdicts interactively")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-db is required")
	}

	store, err := verdictlog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if *browse {
		return tui.Browse(store, browseLimit, *search)
	}

	now := clock.Now()
	stats, err := store.Stats(now.Add(-*since), now)
	if err != nil {
		return err
	}
	runs, err := store.Runs(*limit)
	if err != nil {
		return err
	}
	recent, err := store.Recent(*limit, 0, *search)
	if err != nil {
		return err
	}

	re := lipgloss.NewRenderer(stdout)
	heading := re.NewStyle().Bold(true)
	dim := re.NewStyle().Faint(true)
	alert := re.NewStyle().Foreground(lipgloss.Color("9"))

	printf("%s\n", heading.Render(fmt.Sprintf("Verdicts in the last %s:", *since)))
	printf("- total: %d\n- recommended: %d\n- learned: %d\n\n", stats.Verdicts, stats.Recommended, stats.Learned)

	printf("%s\n", heading.Render("Top recommended domains:"))
	if len(stats.TopRecommended) == 0 {
		printf("%s\n", dim.Render("(none)"))
	}
	for _, d := range stats.TopRecommended {
		printf("  %-40s %5d  max=%.2f\n", validation.Printable(d.Domain), d.Count, d.MaxScore)
	}
	printf("\n%s\n", heading.Render("Top clients:"))
	if len(stats.TopClients) == 0 {
		printf("%s\n", dim.Render("(none)"))
	}
	for _, c := range stats.TopClients {
		printf("  %-40s %5d\n", validation.Printable(c.Client), c.Count)
	}

	printf("\n%s\n", heading.Render("Runs:"))
	for _, r := range runs {
		printf("  %s  %s  %-16s total=%d recommended=%d learned=%d candidates=%d\n",
			r.StartedAt.Format(time.RFC3339), r.ID, r.ModelType, r.Total, r.Recommended, r.Learned, r.Candidates)
	}

	printf("\n%s\n", heading.Render("Recent verdicts:"))
	for _, e := range recent {
		decision := e.Decision
		if decision == "recommend" {
			decision = alert.Render(decision)
		}
		flags := strings.Join(e.Flags, ",")
		if flags == "" {
			flags = "-"
		}
		printf("  %s %s %s %s score=%.2f %s flags=%s\n",
			e.Timestamp.Format(time.RFC3339), validation.Printable(e.Client), validation.Printable(e.Domain), e.QType, e.Score, decision, flags)
	}
	return nil
}

// RunPrune implements 'dnsadvisor prune'.
func RunPrune(args []string) error {
	fs := flag.NewFlagSet("prune", flag.ContinueOnError)
	dbPath := fs.String("db", "", "Verdict log database (required)")
	retention := fs.Duration("retention", 30*24*time.Hour, "Delete verdicts older than this")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *dbPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-db is required")
	}
	if *retention <= 0 {
		return errors.New(errors.KindValidation, "-retention must be positive")
	}

	store, err := verdictlog.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	n, err := store.Cleanup(*retention)
	if err != nil {
		return err
	}
	logging.Info("pruned verdict log", "path", *dbPath, "deleted", n, "retention", retention.String())
	printf("deleted %d verdicts\n", n)
	return nil
}
