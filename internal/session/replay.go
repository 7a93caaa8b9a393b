package session

import (
	"context"
	"fmt"
	"slices"

	"github.com/montanaflynn/stats"
	"github.com/ppiankov/dxcite/internal/citation"
	"github.com/ppiankov/dxcite/internal/model"
	"github.com/ppiankov/dxcite/internal/worker"
)

// ReplayResult is the re-parse of one saved assisted interaction
type ReplayResult struct {
	Path       string
	Session    string
	Key        string
	Condition  model.Condition
	Citations  []string // Citations produced by the re-parse
	Stored     []string // Citations saved with the interaction
	Consistent bool     // Re-parse reproduced the stored citations and message
	Err        error
}

// ReplaySummary aggregates a replay run
type ReplaySummary struct {
	Records         int
	Responses       int
	Failed          int
	Inconsistent    int
	MeanCitations   float64
	MedianCitations float64
	MaxCitations    float64
	PerCondition    map[model.Condition]int
}

// replayJob re-parses every interaction of one record file
type replayJob struct {
	path   string
	parser *citation.Parser
}

type replayFileResult struct {
	results []*ReplayResult
	err     error
}

func (r *replayFileResult) GetError() error { return r.err }

func (j *replayJob) Execute(ctx context.Context) worker.Result {
	if err := ctx.Err(); err != nil {
		return &replayFileResult{err: err}
	}

	record, err := Load(j.path)
	if err != nil {
		return &replayFileResult{err: err}
	}

	var out []*ReplayResult
	for _, key := range record.AIHelpKeys() {
		out = append(out, replayEntry(record, j.path, key, j.parser))
	}
	return &replayFileResult{results: out}
}

func replayEntry(record *model.Record, path, key string, parser *citation.Parser) *ReplayResult {
	res := &ReplayResult{Path: path, Session: record.ID(), Key: key}

	var entry model.AIHelp
	if err := record.Decode(key, &entry); err != nil {
		res.Err = err
		return res
	}
	res.Condition = entry.Condition
	res.Stored = entry.Citations

	if entry.Condition == "" {
		var group string
		if err := record.Decode(model.FieldGroup, &group); err == nil {
			res.Condition = model.Condition(group)
		}
	}

	parsed, err := parser.Parse(entry.RawMessage, entry.Hypotheses, entry.SelectedHypotheses, res.Condition)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", key, err)
		return res
	}

	res.Citations = parsed.Citations
	res.Consistent = slices.Equal(parsed.Citations, entry.Citations) && parsed.Message == entry.ParsedMessage
	return res
}

// Replay re-parses the saved interactions of every record file on a bounded
// worker pool. Results keep file order, then interaction order. Unreadable
// files are reported as failed results rather than aborting the run.
func Replay(ctx context.Context, paths []string, parser *citation.Parser, workers int) ([]*ReplayResult, *ReplaySummary) {
	jobs := make([]worker.Job, len(paths))
	for i, p := range paths {
		jobs[i] = &replayJob{path: p, parser: parser}
	}

	var results []*ReplayResult
	records := 0
	for i, r := range worker.Run(ctx, workers, jobs) {
		if r == nil {
			results = append(results, &ReplayResult{Path: paths[i], Err: ctx.Err()})
			continue
		}
		fr := r.(*replayFileResult)
		if fr.err != nil {
			results = append(results, &ReplayResult{Path: paths[i], Err: fr.err})
			continue
		}
		records++
		results = append(results, fr.results...)
	}

	return results, Summarize(records, results)
}

// Summarize computes citation statistics over replay results
func Summarize(records int, results []*ReplayResult) *ReplaySummary {
	summary := &ReplaySummary{
		Records:      records,
		PerCondition: make(map[model.Condition]int),
	}

	var counts []float64
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Responses++
		summary.PerCondition[r.Condition]++
		if !r.Consistent {
			summary.Inconsistent++
		}
		counts = append(counts, float64(len(r.Citations)))
	}

	if len(counts) == 0 {
		return summary
	}

	// Errors only occur on empty input
	summary.MeanCitations, _ = stats.Mean(counts)
	summary.MedianCitations, _ = stats.Median(counts)
	summary.MaxCitations, _ = stats.Max(counts)
	return summary
}
