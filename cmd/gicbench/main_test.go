package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Iscaraca/gic/bench"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverlayKeepsFileValuesForUnsetFlags(t *testing.T) {
	file := bench.DefaultConfig()
	file.Trials = 7
	file.Warmup = 1

	flagCfg := bench.DefaultConfig()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.IntVar(&flagCfg.Trials, "trials", flagCfg.Trials, "")
	flags.IntVar(&flagCfg.Warmup, "warmup", flagCfg.Warmup, "")
	require.NoError(t, flags.Parse([]string{"--trials", "3"}))

	cfg := overlay(file, flagCfg, flags)
	assert.Equal(t, 3, cfg.Trials)
	assert.Equal(t, 1, cfg.Warmup)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json", "logfmt"} {
		logger, err := newLogger(format, "debug")
		require.NoError(t, err, format)
		logger.Debug("hello")
	}

	_, err := newLogger("xml", "info")
	assert.Error(t, err)
	_, err = newLogger("json", "loud")
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	out := t.TempDir()
	err := run([]string{
		"--backend", "schnorr,bls",
		"--warmup", "1",
		"--trials", "2",
		"--seed", "01",
		"--out", out,
		"--format", "csv,json",
		"--table=false",
		"--log-level", "error",
	})
	require.NoError(t, err)

	for _, name := range []string{bench.TrialsFile, bench.SummaryFile} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, name)
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	assert.Error(t, run([]string{"--trials", "0", "--table=false"}))
	assert.Error(t, run([]string{"--no-such-flag"}))
}
