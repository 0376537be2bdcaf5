// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package tui

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"grimm.is/dnsadvisor/internal/errors"
	"grimm.is/dnsadvisor/internal/feedback"
)

// Choices offered for each finding.
const (
	ChoiceBlock = "block"
	ChoiceAllow = "allow"
	ChoiceSkip  = "skip"
)

// LabelForm builds a form with one question per pair. The answer for
// pairs[i] is written to choices[i], which must be at least as long.
func LabelForm(pairs []feedback.Pair, choices []string) *huh.Form {
	groups := make([]*huh.Group, 0, len(pairs))
	for i, p := range pairs {
		sel := huh.NewSelect[string]().
			Title(p.Domain).
			Description(fmt.Sprintf("queried by %s (%d of %d)", p.Client, i+1, len(pairs))).
			Options(
				huh.NewOption("Block (malicious)", ChoiceBlock),
				huh.NewOption("Allow (benign)", ChoiceAllow),
				huh.NewOption("Skip", ChoiceSkip),
			).
			Value(&choices[i])
		groups = append(groups, huh.NewGroup(sel))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeBase16())
}

// Label asks the operator about each pair and returns the answered ones
// as feedback entries.
func Label(pairs []feedback.Pair) ([]feedback.Entry, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	choices := make([]string, len(pairs))
	for i := range choices {
		choices[i] = ChoiceSkip
	}
	if err := LabelForm(pairs, choices).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, errors.New(errors.KindValidation, "labelling aborted")
		}
		return nil, errors.Wrap(err, errors.KindIO, "run labelling form")
	}
	return Entries(pairs, choices), nil
}

// Entries turns answers into feedback entries scoped to each client.
// Skipped or unanswered pairs are dropped.
func Entries(pairs []feedback.Pair, choices []string) []feedback.Entry {
	var out []feedback.Entry
	for i, p := range pairs {
		if i >= len(choices) {
			break
		}
		var label any
		switch choices[i] {
		case ChoiceBlock:
			label = ChoiceBlock
		case ChoiceAllow:
			label = false
		default:
			continue
		}
		client := p.Client
		out = append(out, feedback.Entry{Domain: p.Domain, Client: &client, Label: label})
	}
	return out
}
