// Package batch classifies many decklists concurrently against one classifier.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
	"github.com/ramonehamilton/mtg-metagame/internal/decklist"
	"github.com/ramonehamilton/mtg-metagame/internal/metrics"
)

// Config configures a Runner.
type Config struct {
	Classifier *archetype.Classifier
	// Workers caps concurrent classifications. Zero uses GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// Result is the classification of one input deck.
type Result struct {
	Index  int    `json:"index"`
	DeckID string `json:"deck_id"`
	Source string `json:"source,omitempty"`
	archetype.ClassificationResult
}

// Run is the outcome of classifying a batch of decks.
type Run struct {
	ID          uuid.UUID      `json:"id"`
	Format      string         `json:"format"`
	StartedAt   time.Time      `json:"started_at"`
	FinishedAt  time.Time      `json:"finished_at"`
	Results     []Result       `json:"results"`
	LabelCounts map[string]int `json:"label_counts"`

	Stats *metrics.ClassifierStats `json:"stats,omitempty"`
}

// LabelCount is a label and the number of decks that received it.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// SortedLabels returns label counts ordered by count, then label.
func (r *Run) SortedLabels() []LabelCount {
	counts := make([]LabelCount, 0, len(r.LabelCounts))
	for label, n := range r.LabelCounts {
		counts = append(counts, LabelCount{Label: label, Count: n})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Label < counts[j].Label
	})
	return counts
}

// Runner fans decks out to a bounded set of goroutines.
type Runner struct {
	classifier *archetype.Classifier
	workers    int
	logger     *slog.Logger
}

// NewRunner creates a runner.
func NewRunner(config Config) (*Runner, error) {
	if config.Classifier == nil {
		return nil, errors.New("batch runner requires a classifier")
	}
	if config.Workers < 0 {
		return nil, fmt.Errorf("workers must be non-negative, got %d", config.Workers)
	}
	if config.Workers == 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Runner{
		classifier: config.Classifier,
		workers:    config.Workers,
		logger:     config.Logger,
	}, nil
}

// Run classifies every deck. Results keep input order. Cancelling ctx stops
// scheduling new decks and returns the context error with no run.
func (r *Runner) Run(ctx context.Context, decks []decklist.Entry) (*Run, error) {
	run := &Run{
		ID:        uuid.New(),
		Format:    r.classifier.Format(),
		StartedAt: time.Now().UTC(),
		Results:   make([]Result, len(decks)),
	}

	collector := metrics.NewClassifierMetrics()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, deck := range decks {
		if gctx.Err() != nil {
			break
		}
		i, deck := i, deck
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			result := r.classifier.Classify(deck.List)
			collector.Record(result.MatchKind, time.Since(start))

			run.Results[i] = Result{
				Index:                i,
				DeckID:               deck.ID,
				Source:               deck.Source,
				ClassificationResult: result,
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch run cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch run cancelled: %w", err)
	}

	run.FinishedAt = time.Now().UTC()
	run.LabelCounts = make(map[string]int)
	for _, res := range run.Results {
		run.LabelCounts[res.FinalLabel]++
	}
	run.Stats = collector.Stats()

	r.logger.Info("Batch run complete",
		"run_id", run.ID,
		"format", run.Format,
		"decks", len(decks),
		"labels", len(run.LabelCounts),
		"labelled_pct", run.Stats.LabelledRate,
		"p95_ms", run.Stats.Latency.P95,
		"duration", run.FinishedAt.Sub(run.StartedAt))

	return run, nil
}
