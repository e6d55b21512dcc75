// Package perf tracks rolling per-operation success rates and classifies
// recent trends to drive adaptation recommendations.
package perf

import (
	"sync"
	"time"

	"github.com/opsgate/opsgate/internal/model"
)

const (
	// historySize bounds the rolling history kept per operation.
	historySize = 1000
	// trendWindow is how many recent records feed trend classification.
	trendWindow = 5
)

// recommendations is the fixed trend → recommendation mapping.
var recommendations = map[model.Trend]string{
	model.TrendPositive:         "Continue current approach, monitor for consistency",
	model.TrendNegative:         "Consider strategy adaptation or intervention",
	model.TrendStable:           "Performance is adequate, minor optimizations may help",
	model.TrendInsufficientData: "Collect more data before making changes",
}

// Recommendation returns the fixed recommendation for a trend.
func Recommendation(t model.Trend) string {
	if r, ok := recommendations[t]; ok {
		return r
	}
	return "Insufficient information for recommendation"
}

// Analysis is the outcome of recording one performance observation.
type Analysis struct {
	Record         model.PerformanceRecord `json:"record"`
	Trend          model.Trend             `json:"trend"`
	SuccessRate    float64                 `json:"success_rate"`
	SampleSize     int                     `json:"sample_size"`
	Recommendation string                  `json:"recommendation"`
}

// Tracker keeps a bounded rolling history per operation and classifies the
// success-rate trend over the most recent records.
type Tracker struct {
	mu            sync.Mutex
	history       map[string][]model.PerformanceRecord
	optimizations []Optimization
	now           func() time.Time
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{
		history: make(map[string][]model.PerformanceRecord),
		now:     time.Now,
	}
}

// Record appends one observation for the operation and classifies the trend
// over the most recent window: success rate above 0.8 is positive, below
// 0.5 negative, otherwise stable. Fewer than two samples is
// insufficient_data.
func (t *Tracker) Record(operation string, metrics map[string]float64, success bool) Analysis {
	rec := model.PerformanceRecord{
		Operation: operation,
		Metrics:   metrics,
		Success:   success,
		CreatedAt: t.now().UTC(),
	}

	t.mu.Lock()
	records := append(t.history[operation], rec)
	if len(records) > historySize {
		records = records[len(records)-historySize:]
	}
	t.history[operation] = records

	trend, rate, samples := classify(records)
	t.mu.Unlock()

	return Analysis{
		Record:         rec,
		Trend:          trend,
		SuccessRate:    rate,
		SampleSize:     samples,
		Recommendation: Recommendation(trend),
	}
}

// Trend returns the current trend for an operation without recording.
func (t *Tracker) Trend(operation string) (model.Trend, float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	trend, rate, _ := classify(t.history[operation])
	return trend, rate
}

// Summary reports tracker totals across all operations.
type Summary struct {
	TotalOperations        int     `json:"total_operations"`
	SuccessRate            float64 `json:"success_rate"`
	TrackedOps             int     `json:"tracked_ops"`
	OptimizationsPerformed int     `json:"optimizations_performed"`
}

// Summary returns overall totals: record count and success rate across every
// operation's history.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	var total, successful int
	for _, records := range t.history {
		total += len(records)
		for _, r := range records {
			if r.Success {
				successful++
			}
		}
	}

	s := Summary{
		TotalOperations:        total,
		TrackedOps:             len(t.history),
		OptimizationsPerformed: len(t.optimizations),
	}
	if total > 0 {
		s.SuccessRate = float64(successful) / float64(total)
	}
	return s
}

func classify(records []model.PerformanceRecord) (model.Trend, float64, int) {
	if len(records) < 2 {
		return model.TrendInsufficientData, 0, len(records)
	}

	recent := records
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	successful := 0
	for _, r := range recent {
		if r.Success {
			successful++
		}
	}
	rate := float64(successful) / float64(len(recent))

	switch {
	case rate > 0.8:
		return model.TrendPositive, rate, len(recent)
	case rate < 0.5:
		return model.TrendNegative, rate, len(recent)
	default:
		return model.TrendStable, rate, len(recent)
	}
}
