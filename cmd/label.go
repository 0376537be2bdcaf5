// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"flag"
	"os"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/feedback"
	"grimm.is/dnsadvisor/internal/logging"
	"grimm.is/dnsadvisor/internal/report"
	"grimm.is/dnsadvisor/internal/state"
	"grimm.is/dnsadvisor/internal/tui"
)

// RunLabel implements 'dnsadvisor label': an interactive alternative to
// editing a feedback template by hand.
func RunLabel(args []string) error {
	fs := flag.NewFlagSet("label", flag.ContinueOnError)
	reportPath := fs.String("report", "", "JSON report from 'analyze' (required)")
	outPath := fs.String("out", "", "Feedback file to write or extend (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reportPath == "" || *outPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-report and -out are required")
	}

	rep, err := report.Load(*reportPath)
	if err != nil {
		return err
	}
	pairs := feedback.Unique(rep.FeedbackPairs())
	if len(pairs) == 0 {
		printf("report has no findings to label\n")
		return nil
	}

	entries, err := tui.Label(pairs)
	if err != nil {
		return err
	}

	doc, err := mergeFeedback(*outPath, entries)
	if err != nil {
		return err
	}
	if err := state.Save(*outPath, doc); err != nil {
		return err
	}
	logging.Info("feedback written", "path", *outPath, "new", len(entries), "total", len(doc.Labels))
	printf("labelled %d of %d findings\n", len(entries), len(pairs))
	return nil
}

// mergeFeedback appends entries to the document at path, if any. Later
// entries take precedence when the file is loaded.
func mergeFeedback(path string, entries []feedback.Entry) (feedback.Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return feedback.Document{Labels: entries}, nil
	}
	if err != nil {
		return feedback.Document{}, errors.Attr(errors.Wrap(err, errors.KindIO, "read feedback"), "path", path)
	}
	doc, err := feedback.Decode(data)
	if err != nil {
		return feedback.Document{}, errors.Attr(err, "path", path)
	}
	doc.Labels = append(doc.Labels, entries...)
	return doc, nil
}
