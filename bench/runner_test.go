package bench

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	gic "github.com/Iscaraca/gic"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig(backends ...string) Config {
	cfg := DefaultConfig()
	cfg.Backends = backends
	cfg.Seed = "5eed"
	cfg.GQ.ModulusBits = 512
	cfg.Formats = nil
	return cfg
}

func TestRunnerRecordsExactTrialCount(t *testing.T) {
	cfg := testConfig("gq", "schnorr", "bls")
	cfg.Warmup = 5
	cfg.Trials = 100

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	for _, res := range report.Results {
		require.NoError(t, res.Err, "backend %s", res.Backend)
		assert.Zero(t, res.Failed)

		counts := map[string]int{}
		warm := map[string]int{}
		for _, s := range res.Samples {
			if s.Warmup {
				warm[s.Op]++
			} else {
				counts[s.Op]++
			}
		}
		for _, op := range TimedOps {
			assert.Equal(t, 100, counts[op], "%s %s samples", res.Backend, op)
			assert.Equal(t, 5, warm[op], "%s %s warm-up samples", res.Backend, op)
			assert.Equal(t, int64(100), res.Ops[op].Count, "%s %s statistics", res.Backend, op)
			assert.True(t, res.Ops[op].Mean > 0)
		}
		assert.Equal(t, 1, counts[OpSetup])
		assert.Positive(t, res.CertLen)
	}
}

// flakyBackend fails every nth CombinePublic with err.
type flakyBackend struct {
	gic.Backend
	n     int64
	calls int64
	err   error
}

func (f *flakyBackend) CombinePublic(R, pkCA gic.Element, e gic.Challenge) (gic.Element, error) {
	if atomic.AddInt64(&f.calls, 1)%f.n == 0 {
		return nil, f.err
	}
	return f.Backend.CombinePublic(R, pkCA, e)
}

func flakyFactory(n int64, err error) BackendFactory {
	return func(name string, cfg Config) (gic.Backend, error) {
		b, e := NewBackend(name, cfg)
		if e != nil {
			return nil, e
		}
		return &flakyBackend{Backend: b, n: n, err: err}, nil
	}
}

func TestRunnerExcludesDomainErrors(t *testing.T) {
	cfg := testConfig("bls")
	cfg.Warmup = 0
	cfg.Trials = 9

	core, logs := observer.New(zap.WarnLevel)
	runner, err := NewRunner(cfg,
		WithBackendFactory(flakyFactory(3, gic.Errorf(gic.ErrDomainMismatch, "injected"))),
		WithLogger(zap.New(core)),
	)
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	res := report.Results[0]
	require.NoError(t, res.Err)
	assert.Equal(t, int64(3), res.Failed)
	for _, op := range TimedOps {
		assert.Equal(t, int64(6), res.Ops[op].Count, op)
	}
	assert.Equal(t, 3, logs.FilterMessage("trial excluded").Len())
}

func TestRunnerAbortsOnReconstructionMismatch(t *testing.T) {
	cfg := testConfig("bls", "schnorr")
	cfg.Warmup = 1
	cfg.Trials = 4

	mismatch := gic.Errorf(gic.ErrReconstructionMismatch, "injected")
	factory := func(name string, cfg Config) (gic.Backend, error) {
		if name == "bls" {
			return flakyFactory(2, mismatch)(name, cfg)
		}
		return NewBackend(name, cfg)
	}
	runner, err := NewRunner(cfg, WithBackendFactory(factory))
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, report.Results[0].Err, gic.ErrReconstructionMismatch)
	assert.NotEmpty(t, report.Results[0].Error)
	assert.NoError(t, report.Results[1].Err, "other backends keep running")
	assert.Equal(t, int64(4), report.Results[1].Ops[OpPKRecon].Count)
}

func TestRunnerSetupFailureAbortsOnlyThatBackend(t *testing.T) {
	cfg := testConfig("gq", "bls")
	cfg.Warmup = 0
	cfg.Trials = 2
	cfg.GQ.ChallengeBits = 7

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)

	gqRes := report.Results[0]
	assert.ErrorIs(t, gqRes.Err, gic.ErrInvalidParameter)
	assert.Empty(t, gqRes.Samples)
	assert.NoError(t, report.Results[1].Err)
}

func TestRunnerFactoryFailure(t *testing.T) {
	cfg := testConfig("bls")
	runner, err := NewRunner(cfg, WithBackendFactory(func(string, Config) (gic.Backend, error) {
		return nil, errors.New("no backend")
	}))
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	assert.EqualError(t, errors.Cause(report.Results[0].Err), "no backend")
}

func TestRunnerParallel(t *testing.T) {
	cfg := testConfig("schnorr", "bls")
	cfg.Warmup = 1
	cfg.Trials = 3
	cfg.Parallel = true

	runner, err := NewRunner(cfg)
	require.NoError(t, err)
	report, err := runner.Run(context.Background())
	require.NoError(t, err)
	for i, name := range cfg.Backends {
		require.Equal(t, name, report.Results[i].Backend)
		assert.NoError(t, report.Results[i].Err)
		assert.Equal(t, int64(3), report.Results[i].Ops[OpICertGen].Count)
	}
}

func TestRunnerIsReproducibleUnderSeed(t *testing.T) {
	cfg := testConfig("gq")
	cfg.Warmup = 0
	cfg.Trials = 1

	run := func() *Result {
		runner, err := NewRunner(cfg)
		require.NoError(t, err)
		report, err := runner.Run(context.Background())
		require.NoError(t, err)
		return report.Results[0]
	}
	a, b := run(), run()
	assert.Equal(t, a.Group, b.Group)
	assert.Equal(t, a.Bits, b.Bits)
	assert.Equal(t, 512, a.Bits)
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	runner, err := NewRunner(testConfig("bls"))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = runner.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerValidatesConfig(t *testing.T) {
	cfg := testConfig("rsa")
	_, err := NewRunner(cfg)
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	rec := newRecorder(10)
	for i := 1; i <= 5; i++ {
		rec.observe(OpSKGen, time.Duration(i)*time.Microsecond)
	}
	s := rec.stats(OpSKGen)
	assert.Equal(t, int64(5), s.Count)
	assert.InDelta(t, 3.0, s.Mean, 1e-9)
	assert.InDelta(t, 3.0, s.Median, 1e-9)
	assert.InDelta(t, 5.0, s.P95, 1e-9, "p95 clamps to the largest sample")
	assert.InDelta(t, 5.0, s.P99, 1e-9)
	assert.InDelta(t, 2.0, s.Variance, 1e-9)
	assert.InDelta(t, 1.4142135, s.StdDev, 1e-6)
	assert.InDelta(t, 1.0, s.Min, 1e-9)
	assert.InDelta(t, 5.0, s.Max, 1e-9)

	assert.Equal(t, Stats{}, rec.stats(OpPKRecon), "no samples")
}

func TestSummarizeTailPercentiles(t *testing.T) {
	rec := newRecorder(100)
	for i := 100; i >= 1; i-- {
		rec.observe(OpICertGen, time.Duration(i)*time.Microsecond)
	}
	s := rec.stats(OpICertGen)
	require.Equal(t, int64(100), s.Count)
	assert.InDelta(t, 50.5, s.Median, 1e-6)
	assert.InDelta(t, 95.95, s.P95, 1e-6)
	assert.InDelta(t, 99.99, s.P99, 1e-6)
	assert.LessOrEqual(t, s.Median, s.P95)
	assert.LessOrEqual(t, s.P95, s.P99)
	assert.LessOrEqual(t, s.P99, s.Max)
}
