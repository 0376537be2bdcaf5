// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package verdictlog

import "grimm.is/dnsadvisor/internal/analyzer"

const defaultBatchSize = 500

// Recorder buffers entries for one run and writes them in batches.
type Recorder struct {
	store     *Store
	runID     string
	recordAll bool
	batchSize int
	pending   []Entry
	written   int
}

// NewRecorder returns a Recorder tagging entries with runID. Unless
// recordAll is set only "recommend" decisions and labelled verdicts are
// kept.
func NewRecorder(store *Store, runID string, recordAll bool) *Recorder {
	return &Recorder{
		store:     store,
		runID:     runID,
		recordAll: recordAll,
		batchSize: defaultBatchSize,
	}
}

// Add queues e, flushing when the batch is full.
func (r *Recorder) Add(e Entry) error {
	if !r.recordAll && e.Decision != "recommend" && e.Label == nil {
		return nil
	}
	e.RunID = r.runID
	r.pending = append(r.pending, e)
	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Record converts an analyzer verdict and queues it.
func (r *Recorder) Record(v analyzer.Verdict) error {
	e := Entry{
		Timestamp: v.Query.Timestamp,
		Client:    v.Query.Client,
		Domain:    v.Query.Domain,
		QType:     v.Query.QType,
		Score:     v.Score,
		Decision:  string(v.Decision),
		Flags:     v.Flags.Active(),
	}
	if v.Learned {
		label := v.Label
		e.Label = &label
	}
	return r.Add(e)
}

// Flush writes any queued entries.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.RecordBatch(r.pending); err != nil {
		return err
	}
	r.written += len(r.pending)
	r.pending = r.pending[:0]
	return nil
}

// Written is the number of entries committed so far.
func (r *Recorder) Written() int {
	return r.written
}
