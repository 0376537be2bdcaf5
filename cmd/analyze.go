// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"

	"grimm.is/dnsadvisor/internal/analyzer"
	"grimm.is/dnsadvisor/internal/clock"
	"grimm.is/dnsadvisor/internal/config"
	"grimm.is/dnsadvisor/internal/dnslog"
	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/feedback"
	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/metrics"
	"grimm.is/dnsadvisor/internal/policy"
	"grimm.is/dnsadvisor/internal/report"
	"grimm.is/dnsadvisor/internal/scoring"
	"grimm.is/dnsadvisor/internal/verdictlog"
)

// stdout is where reports go when no output file is given.
var stdout io.Writer = os.Stdout

// AnalyzeOptions are the inputs of one analysis run.
type AnalyzeOptions struct {
	LogPath      string
	ConfigPath   string
	ModelPath    string
	FeedbackPath string
	PolicyPath   string
	OutPath      string
	Text         bool
	Learn        bool
}

// RunAnalyze implements 'dnsadvisor analyze'.
func RunAnalyze(args []string) error {
	var opts AnalyzeOptions
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.StringVar(&opts.LogPath, "log", "", "dnsmasq log file, or - for stdin (required)")
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file (.hcl, .json or .yaml)")
	fs.StringVar(&opts.ModelPath, "model", "", "Model state file")
	fs.StringVar(&opts.FeedbackPath, "feedback", "", "Feedback labels file")
	fs.StringVar(&opts.PolicyPath, "policy-state", "", "Policy state file")
	fs.StringVar(&opts.OutPath, "out", "", "Write the report here instead of stdout")
	fs.BoolVar(&opts.Text, "text", false, "Write a text report instead of JSON")
	fs.BoolVar(&opts.Learn, "learn", false, "Apply feedback labels to the model and policy state")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.LogPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-log is required")
	}
	return Analyze(opts)
}

// Analyze runs the full pipeline: parse, score, learn, persist, report.
func Analyze(opts AnalyzeOptions) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		var err error
		if cfg, err = config.LoadFile(opts.ConfigPath); err != nil {
			return err
		}
	}
	logging.SetDefault(logging.New(cfg.LoggerConfig()))
	logger := logging.WithComponent("analyze")

	started := clock.Now()
	runID := uuid.NewString()
	logger = logger.With("run_id", runID)

	queries, stats, err := dnslog.NewParser(started).ParseFile(opts.LogPath)
	if err != nil {
		return err
	}
	// Concatenated logs from several resolvers may interleave.
	slices.SortStableFunc(queries, func(a, b dnslog.Query) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	logger.Info("parsed log",
		"path", opts.LogPath,
		"lines", stats.Lines,
		"queries", stats.Queries,
		"unmatched", stats.Unmatched,
		"invalid", stats.Invalid)

	scorer, err := scoring.Load(cfg.Model(), opts.ModelPath, cfg.ScoringParams())
	if err != nil {
		return err
	}

	var labels *feedback.Map
	if opts.FeedbackPath != "" {
		if labels, err = feedback.Load(opts.FeedbackPath); err != nil {
			return err
		}
		logger.Info("loaded feedback", "labels", labels.Len(), "learn", opts.Learn)
	}

	var pol *policy.State
	if opts.PolicyPath != "" {
		if pol, err = policy.Load(opts.PolicyPath); err != nil {
			return err
		}
	}

	var m *metrics.Metrics
	if cfg.Metrics != nil && cfg.Metrics.Textfile != "" {
		m = metrics.New()
	}

	var (
		store    *verdictlog.Store
		recorder *verdictlog.Recorder
		sink     analyzer.Sink
	)
	if cfg.VerdictLog != nil && cfg.VerdictLog.Path != "" {
		if store, err = verdictlog.Open(cfg.VerdictLog.Path); err != nil {
			return err
		}
		defer store.Close()
		recorder = verdictlog.NewRecorder(store, runID, cfg.VerdictLog.RecordAll)
		sink = recorder
	}

	a, err := analyzer.New(analyzer.Options{
		Config:   cfg,
		Scorer:   scorer,
		Feedback: labels,
		Policy:   pol,
		Learn:    opts.Learn,
		Metrics:  m,
		Sink:     sink,
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	res, err := a.Run(queries)
	if err != nil {
		return err
	}

	if err := saveModel(scorer, cfg.Model(), opts); err != nil {
		return err
	}
	if pol != nil {
		if err := pol.Save(opts.PolicyPath); err != nil {
			return err
		}
	}

	rep := report.New(res, report.Meta{
		RunID:       runID,
		GeneratedAt: clock.Now(),
		ModelType:   string(cfg.Model()),
	})
	write := rep.WriteJSON
	if opts.Text {
		write = rep.WriteText
	}
	if err := writeOutput(opts.OutPath, write); err != nil {
		return err
	}

	if store != nil {
		if err := recordHistory(store, recorder, cfg, res, runID, started, logger); err != nil {
			return err
		}
	}

	if m != nil {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return err
		}
	}
	return nil
}

// saveModel persists the scorer. The statistical model always learns from
// traffic and is saved whenever a path is given; the other backends only
// change under -learn.
func saveModel(scorer scoring.Scorer, kind scoring.Kind, opts AnalyzeOptions) error {
	if opts.ModelPath == "" {
		return nil
	}
	saver, ok := scorer.(scoring.Saver)
	if !ok {
		return nil
	}
	if kind != scoring.KindStatistical && !opts.Learn {
		return nil
	}
	return saver.Save(opts.ModelPath)
}

func recordHistory(store *verdictlog.Store, rec *verdictlog.Recorder, cfg *config.Config,
	res *analyzer.Result, runID string, started time.Time, logger *logging.Logger) error {
	if err := rec.Flush(); err != nil {
		return err
	}
	if err := store.RecordRun(verdictlog.Run{
		ID:          runID,
		StartedAt:   started,
		FinishedAt:  clock.Now(),
		ModelType:   string(cfg.Model()),
		Total:       res.Summary.Total,
		Recommended: res.Summary.Recommended,
		Learned:     res.Summary.Learned,
		Candidates:  len(res.Candidates),
	}); err != nil {
		return err
	}

	retention, err := cfg.RetentionDuration()
	if err != nil {
		return errors.Wrap(err, errors.KindValidation, "verdict_log.retention")
	}
	if retention > 0 {
		n, err := store.Cleanup(retention)
		if err != nil {
			return err
		}
		logger.Debug("pruned verdict log", "deleted", n)
	}
	logger.Info("verdicts recorded", "written", rec.Written())
	return nil
}

// writeOutput runs fn against path, or stdout when path is empty.
func writeOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "create output"), "path", path)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Attr(errors.Wrap(err, errors.KindIO, "close output"), "path", path)
	}
	return nil
}

func printf(format string, args ...any) {
	fmt.Fprintf(stdout, format, args...)
}
