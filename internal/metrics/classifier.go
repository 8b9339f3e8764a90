package metrics

import (
	"sync/atomic"
	"time"

	"github.com/ramonehamilton/mtg-metagame/internal/archetype"
)

// ClassifierMetrics counts classification outcomes and their latency.
// It is safe for concurrent use.
type ClassifierMetrics struct {
	Latency *Histogram

	byKind [archetype.MatchColorOnly + 1]atomic.Uint64
}

// NewClassifierMetrics creates an empty collector.
func NewClassifierMetrics() *ClassifierMetrics {
	return &ClassifierMetrics{Latency: NewHistogram(DefaultMaxSamples)}
}

// Record adds one classification outcome.
func (m *ClassifierMetrics) Record(kind archetype.MatchKind, d time.Duration) {
	if kind < 0 || int(kind) >= len(m.byKind) {
		kind = archetype.MatchUnknown
	}
	m.byKind[kind].Add(1)
	m.Latency.Record(d)
}

// ClassifierStats is a snapshot of ClassifierMetrics.
type ClassifierStats struct {
	Decks      uint64            `json:"decks"`
	MatchKinds map[string]uint64 `json:"match_kinds"`
	// LabelledRate is the percentage of decks that did not end up Unknown.
	LabelledRate float64      `json:"labelled_rate"`
	Latency      LatencyStats `json:"latency"`
}

// Stats returns a snapshot of the counters and latency distribution.
func (m *ClassifierMetrics) Stats() *ClassifierStats {
	stats := &ClassifierStats{
		MatchKinds: make(map[string]uint64, len(m.byKind)),
		Latency:    m.Latency.Stats(),
	}
	for i := range m.byKind {
		n := m.byKind[i].Load()
		stats.Decks += n
		if n > 0 {
			stats.MatchKinds[archetype.MatchKind(i).String()] = n
		}
	}
	if stats.Decks > 0 {
		unknown := m.byKind[archetype.MatchUnknown].Load()
		stats.LabelledRate = float64(stats.Decks-unknown) / float64(stats.Decks) * 100
	}
	return stats
}
