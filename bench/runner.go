// Package bench times the issuance and reconstruction operations of the
// generic protocol on each backend under one shared trial loop.
package bench

import (
	"context"
	"time"

	gic "github.com/Iscaraca/gic"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Sample is one timed operation.
type Sample struct {
	Op      string
	Warmup  bool
	Rep     int
	Elapsed time.Duration
}

// Result is the outcome of one backend run. Err is set when the run was
// aborted; the samples collected up to that point are kept.
type Result struct {
	Backend       string           `json:"backend"`
	Group         string           `json:"group"`
	Bits          int              `json:"bits"`
	ChallengeBits int              `json:"lam"`
	Setup         time.Duration    `json:"setup_ns"`
	Ops           map[string]Stats `json:"ops"`
	Failed        int64            `json:"failed_trials"`
	CertLen       int              `json:"icert_len_bytes"`
	PublicKeyLen  int              `json:"pk_len_bytes"`
	SecretKeyLen  int              `json:"sk_len_bytes"`
	Error         string           `json:"error,omitempty"`

	Samples []Sample `json:"-"`
	Err     error    `json:"-"`
}

// Report collects the results of every backend in configuration order.
type Report struct {
	Level    int       `json:"level"`
	Warmup   int       `json:"warmup"`
	Trials   int       `json:"trials"`
	Identity string    `json:"identity"`
	Started  time.Time `json:"started"`
	Results  []*Result `json:"results"`
}

// Runner drives the protocol against each configured backend.
type Runner struct {
	cfg     Config
	logger  *zap.Logger
	factory BackendFactory
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithBackendFactory replaces NewBackend.
func WithBackendFactory(f BackendFactory) Option {
	return func(r *Runner) {
		r.factory = f
	}
}

// NewRunner validates cfg and returns a runner for it.
func NewRunner(cfg Config, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, logger: zap.NewNop(), factory: NewBackend}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run benchmarks every backend. A backend whose Setup fails, or whose trials
// hit an unrecoverable error, is reported with Err set and does not stop the
// other backends. Run itself only fails when ctx is cancelled.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		Level:    r.cfg.Level,
		Warmup:   r.cfg.Warmup,
		Trials:   r.cfg.Trials,
		Identity: r.cfg.Identity,
		Started:  time.Now(),
		Results:  make([]*Result, len(r.cfg.Backends)),
	}

	if !r.cfg.Parallel {
		for i, name := range r.cfg.Backends {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			report.Results[i] = r.runBackend(ctx, name)
		}
		return report, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range r.cfg.Backends {
		i, name := i, name
		g.Go(func() error {
			report.Results[i] = r.runBackend(gctx, name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, ctx.Err()
}

func (r *Runner) runBackend(ctx context.Context, name string) *Result {
	logger := r.logger.With(zap.String("backend", name))
	res := &Result{Backend: name, Ops: map[string]Stats{}}

	fail := func(err error) *Result {
		res.Err = err
		res.Error = err.Error()
		logger.Error("backend run aborted", zap.Error(err))
		return res
	}

	backend, err := r.factory(name, r.cfg)
	if err != nil {
		return fail(errors.Wrapf(err, "failed to create backend %s", name))
	}
	seed, err := r.cfg.seed()
	if err != nil {
		return fail(err)
	}
	var opts []gic.Option
	if seed != nil {
		opts = append(opts, gic.WithRandom(gic.NewDeterministicReader(append(seed, name...))))
	}
	proto := gic.New(backend, opts...)

	start := time.Now()
	params, ca, err := proto.Setup(gic.SecurityLevel(r.cfg.Level))
	res.Setup = time.Since(start)
	if err != nil {
		return fail(errors.Wrapf(err, "setup of %s failed", name))
	}
	res.Samples = append(res.Samples, Sample{Op: OpSetup, Elapsed: res.Setup})
	res.Group = params.Group
	res.Bits = params.Modulus.BitLen()
	res.ChallengeBits = params.ChallengeBits
	res.PublicKeyLen = backend.ElementSize()
	res.SecretKeyLen = backend.ScalarSize()
	logger.Info("setup complete",
		zap.String("group", params.Group),
		zap.Duration("elapsed", res.Setup),
	)

	rec := newRecorder(r.cfg.Trials)
	defer func() {
		for _, op := range TimedOps {
			res.Ops[op] = rec.stats(op)
		}
		res.Failed = rec.failed.Count()
	}()

	for i := 0; i < r.cfg.Warmup+r.cfg.Trials; i++ {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		warmup := i < r.cfg.Warmup
		rep := i
		if !warmup {
			rep = i - r.cfg.Warmup
		}

		t, err := r.trial(proto, ca)
		if err != nil {
			if recoverable(err) {
				logger.Warn("trial excluded", zap.Int("rep", rep), zap.Bool("warmup", warmup), zap.Error(err))
				if !warmup {
					rec.failed.Inc(1)
				}
				continue
			}
			return fail(errors.Wrapf(err, "trial %d of %s failed", rep, name))
		}

		res.CertLen = t.certLen
		for _, op := range TimedOps {
			res.Samples = append(res.Samples, Sample{Op: op, Warmup: warmup, Rep: rep, Elapsed: t.elapsed[op]})
			if !warmup {
				rec.observe(op, t.elapsed[op])
			}
		}
	}

	logger.Info("backend run complete",
		zap.Int("trials", r.cfg.Trials),
		zap.Int64("failed", rec.failed.Count()),
	)
	return res
}

type trialResult struct {
	elapsed map[string]time.Duration
	certLen int
}

// trial runs one request through issuance and both reconstructions. Only the
// three protocol operations are timed; the key agreement check runs after.
func (r *Runner) trial(proto *gic.Protocol, ca *gic.CAKeyPair) (*trialResult, error) {
	t := &trialResult{elapsed: make(map[string]time.Duration, len(TimedOps))}

	contribution, err := proto.GenerateUserContribution()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	cert, completion, err := proto.ICertGen(ca, r.cfg.Identity, contribution.Commitment)
	t.elapsed[OpICertGen] = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	sk, err := proto.SKGen(cert, contribution.Secret, completion)
	t.elapsed[OpSKGen] = time.Since(start)
	if err != nil {
		return nil, err
	}

	start = time.Now()
	pk, err := proto.PKRecon(cert, ca.Public)
	t.elapsed[OpPKRecon] = time.Since(start)
	if err != nil {
		return nil, err
	}

	if err := proto.VerifyKeyPair(sk, pk); err != nil {
		return nil, err
	}
	octets, err := proto.EncodeCertificate(cert)
	if err != nil {
		return nil, err
	}
	t.certLen = len(octets)
	return t, nil
}

// recoverable reports trial-local errors: the trial is excluded and the run
// continues.
func recoverable(err error) bool {
	return errors.Is(err, gic.ErrDomainMismatch) || errors.Is(err, gic.ErrMalformedEncoding)
}
