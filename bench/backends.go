package bench

import (
	"math/big"
	"sort"

	gic "github.com/Iscaraca/gic"
	"github.com/Iscaraca/gic/bls"
	"github.com/Iscaraca/gic/gq"
	"github.com/Iscaraca/gic/schnorr"
	"github.com/pkg/errors"
)

// BackendFactory builds a fresh backend for one run.
type BackendFactory func(name string, cfg Config) (gic.Backend, error)

var factories = map[string]func(Config) gic.Backend{
	"gq": func(cfg Config) gic.Backend {
		var opts []gq.Option
		if cfg.GQ.ModulusBits != 0 {
			opts = append(opts, gq.WithModulusBits(cfg.GQ.ModulusBits))
		}
		if cfg.GQ.Exponent != 0 {
			opts = append(opts, gq.WithExponent(big.NewInt(int64(cfg.GQ.Exponent))))
		}
		if cfg.GQ.ChallengeBits != 0 {
			opts = append(opts, gq.WithChallengeBits(cfg.GQ.ChallengeBits))
		}
		return gq.New(opts...)
	},
	"schnorr": func(Config) gic.Backend { return schnorr.New() },
	"bls":     func(Config) gic.Backend { return bls.New() },
}

// BackendNames lists the shipped backends in a stable order.
func BackendNames() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewBackend is the default BackendFactory.
func NewBackend(name string, cfg Config) (gic.Backend, error) {
	f, ok := factories[name]
	if !ok {
		return nil, errors.Errorf("unknown backend %q", name)
	}
	return f(cfg), nil
}
