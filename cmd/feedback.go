// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package cmd

import (
	"encoding/json"
	"flag"
	"io"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/feedback"
	"grimm.is/dnsadvisor/internal/report"
	"grimm.is/dnsadvisor/internal/state"
)

// RunFeedbackTemplate implements 'dnsadvisor feedback-template'. It turns
// the findings of a JSON report into a labels file with every entry set to
// "review", ready for an operator to edit.
func RunFeedbackTemplate(args []string) error {
	fs := flag.NewFlagSet("feedback-template", flag.ContinueOnError)
	reportPath := fs.String("report", "", "JSON report from 'analyze' (required)")
	outPath := fs.String("out", "", "Write the template here instead of stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *reportPath == "" {
		fs.Usage()
		return errors.New(errors.KindValidation, "-report is required")
	}

	rep, err := report.Load(*reportPath)
	if err != nil {
		return err
	}
	doc := feedback.Template(rep.FeedbackPairs())

	if *outPath != "" {
		return state.Save(*outPath, doc)
	}
	return writeOutput("", func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	})
}
