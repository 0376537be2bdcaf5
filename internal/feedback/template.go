// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package feedback

// Pair identifies a reported (domain, client) combination.
type Pair struct {
	Domain string
	Client string
}

// Unique drops repeated pairs, keeping first-seen order.
func Unique(pairs []Pair) []Pair {
	out := make([]Pair, 0, len(pairs))
	seen := make(map[Pair]struct{}, len(pairs))
	for _, p := range pairs {
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Template returns a document with one "review" entry per distinct pair, in
// first-seen order, for an operator to edit.
func Template(pairs []Pair) Document {
	unique := Unique(pairs)
	doc := Document{Labels: make([]Entry, 0, len(unique))}
	for _, p := range unique {
		client := p.Client
		doc.Labels = append(doc.Labels, Entry{
			Domain: p.Domain,
			Client: &client,
			Label:  ReviewLabel,
		})
	}
	return doc
}
