package bench

import (
	"time"

	metrics "github.com/rcrowley/go-metrics"
)

// Operation names, as they appear in reports.
const (
	OpSetup    = "Setup"
	OpICertGen = "iCertGen"
	OpSKGen    = "SKGen"
	OpPKRecon  = "PKRecon"
)

// TimedOps are the operations measured on every trial.
var TimedOps = []string{OpICertGen, OpSKGen, OpPKRecon}

// Stats summarises the timed samples of one operation. Durations are in
// microseconds.
type Stats struct {
	Count    int64   `json:"count"`
	Mean     float64 `json:"mean_us"`
	Median   float64 `json:"median_us"`
	P95      float64 `json:"p95_us"`
	P99      float64 `json:"p99_us"`
	Variance float64 `json:"variance_us2"`
	StdDev   float64 `json:"stddev_us"`
	Min      float64 `json:"min_us"`
	Max      float64 `json:"max_us"`
}

// recorder keeps one histogram per operation in a private registry. The
// uniform reservoir is sized to the trial count so no sample is dropped.
type recorder struct {
	registry   metrics.Registry
	histograms map[string]metrics.Histogram
	failed     metrics.Counter
}

func newRecorder(trials int) *recorder {
	r := &recorder{
		registry:   metrics.NewRegistry(),
		histograms: map[string]metrics.Histogram{},
	}
	for _, op := range TimedOps {
		r.histograms[op] = metrics.GetOrRegisterHistogram(op, r.registry, metrics.NewUniformSample(trials))
	}
	r.failed = metrics.GetOrRegisterCounter("failed", r.registry)
	return r
}

func (r *recorder) histogram(op string) metrics.Histogram {
	return r.histograms[op]
}

func (r *recorder) observe(op string, d time.Duration) {
	r.histogram(op).Update(d.Nanoseconds())
}

func (r *recorder) stats(op string) Stats {
	return summarize(r.histogram(op).Snapshot())
}

func summarize(h metrics.Histogram) Stats {
	if h.Count() == 0 {
		return Stats{}
	}
	const us = float64(time.Microsecond)
	ps := h.Percentiles([]float64{0.5, 0.95, 0.99})
	return Stats{
		Count:    h.Count(),
		Mean:     h.Mean() / us,
		Median:   ps[0] / us,
		P95:      ps[1] / us,
		P99:      ps[2] / us,
		Variance: h.Variance() / (us * us),
		StdDev:   h.StdDev() / us,
		Min:      float64(h.Min()) / us,
		Max:      float64(h.Max()) / us,
	}
}
