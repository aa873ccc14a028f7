// Command gicbench runs the implicit-certificate benchmark over the selected
// backends and writes the trial rows and summaries.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Iscaraca/gic/bench"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configPath string
	logFormat  string
	logLevel   string
	table      bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "gicbench: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var o options
	cfg := bench.DefaultConfig()

	flags := pflag.NewFlagSet("gicbench", pflag.ContinueOnError)
	flags.StringVarP(&o.configPath, "config", "c", "", "YAML config file; flags override its values")
	flags.StringSliceVarP(&cfg.Backends, "backend", "b", cfg.Backends, "Backends to benchmark (gq, schnorr, bls)")
	flags.IntVar(&cfg.Warmup, "warmup", cfg.Warmup, "Untimed warm-up trials per backend")
	flags.IntVarP(&cfg.Trials, "trials", "n", cfg.Trials, "Timed trials per backend")
	flags.StringVar(&cfg.Identity, "id", cfg.Identity, "Identity placed in every certificate")
	flags.StringVar(&cfg.Seed, "seed", "", "Hex seed for reproducible randomness; empty uses crypto/rand")
	flags.IntVar(&cfg.GQ.ModulusBits, "bits", cfg.GQ.ModulusBits, "RSA modulus bits (gq only)")
	flags.IntVar(&cfg.GQ.Exponent, "e", cfg.GQ.Exponent, "RSA public exponent (gq only)")
	flags.IntVar(&cfg.GQ.ChallengeBits, "lam", cfg.GQ.ChallengeBits, "Challenge bits (gq only)")
	flags.BoolVar(&cfg.Parallel, "parallel", false, "Run backends concurrently")
	flags.StringVarP(&cfg.OutputDir, "out", "o", cfg.OutputDir, "Output directory")
	flags.StringSliceVar(&cfg.Formats, "format", cfg.Formats, "Output files (csv, json, html)")
	flags.BoolVar(&o.table, "table", true, "Print the summary table to stdout")
	flags.StringVar(&o.logFormat, "log-format", "console", "Log encoding (console, json, logfmt)")
	flags.StringVar(&o.logLevel, "log-level", "info", "Log level")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if o.configPath != "" {
		fileCfg, err := bench.LoadConfig(o.configPath)
		if err != nil {
			return err
		}
		cfg = overlay(fileCfg, cfg, flags)
	}

	logger, err := newLogger(o.logFormat, o.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	runner, err := bench.NewRunner(cfg, bench.WithLogger(logger.Named("bench")))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := runner.Run(ctx)
	if err != nil {
		return errors.Wrap(err, "benchmark interrupted")
	}

	paths, err := report.WriteFiles(cfg.OutputDir, cfg.Formats)
	if err != nil {
		return err
	}
	for _, p := range paths {
		logger.Info("wrote report", zap.String("path", p))
	}
	if o.table {
		if err := report.WriteTable(os.Stdout); err != nil {
			return err
		}
	}

	if n := countAborted(report); n > 0 {
		return errors.Errorf("%d backend run(s) aborted", n)
	}
	return nil
}

// overlay applies the flags the user set explicitly on top of the file config.
func overlay(file, flagCfg bench.Config, flags *pflag.FlagSet) bench.Config {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("backend", func() { file.Backends = flagCfg.Backends })
	set("warmup", func() { file.Warmup = flagCfg.Warmup })
	set("trials", func() { file.Trials = flagCfg.Trials })
	set("id", func() { file.Identity = flagCfg.Identity })
	set("seed", func() { file.Seed = flagCfg.Seed })
	set("bits", func() { file.GQ.ModulusBits = flagCfg.GQ.ModulusBits })
	set("e", func() { file.GQ.Exponent = flagCfg.GQ.Exponent })
	set("lam", func() { file.GQ.ChallengeBits = flagCfg.GQ.ChallengeBits })
	set("parallel", func() { file.Parallel = flagCfg.Parallel })
	set("out", func() { file.OutputDir = flagCfg.OutputDir })
	set("format", func() { file.Formats = flagCfg.Formats })
	return file
}

func countAborted(report *bench.Report) int {
	n := 0
	for _, res := range report.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

func newLogger(format, level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeDuration = zapcore.StringDurationEncoder

	var enc zapcore.Encoder
	switch format {
	case "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "logfmt":
		enc = zaplogfmt.NewEncoder(encCfg)
	default:
		return nil, errors.Errorf("unknown log format %q", format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zap.NewAtomicLevelAt(lvl))
	return zap.New(core), nil
}
