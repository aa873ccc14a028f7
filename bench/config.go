package bench

import (
	"encoding/hex"
	"os"

	gic "github.com/Iscaraca/gic"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Output formats understood by Report.WriteFiles.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Config describes one benchmark run.
type Config struct {
	Backends []string `yaml:"backends"`
	Level    int      `yaml:"level"`
	Warmup   int      `yaml:"warmup"`
	Trials   int      `yaml:"trials"`
	Identity string   `yaml:"identity"`

	// Seed is a hex string. When set, every backend draws its randomness from
	// a deterministic stream keyed by the seed and the backend name.
	Seed string `yaml:"seed"`

	GQ GQConfig `yaml:"gq"`

	// Parallel runs the backends concurrently. Timings of concurrent runs
	// interfere with each other and should only be used for smoke runs.
	Parallel bool `yaml:"parallel"`

	OutputDir string   `yaml:"output_dir"`
	Formats   []string `yaml:"formats"`
}

// GQConfig carries the knobs of the unknown-order backend.
type GQConfig struct {
	ModulusBits   int `yaml:"modulus_bits"`
	Exponent      int `yaml:"exponent"`
	ChallengeBits int `yaml:"challenge_bits"`
}

// DefaultConfig returns 5 warm-up and 100 timed trials for every backend at
// the 128-bit level.
func DefaultConfig() Config {
	return Config{
		Backends: BackendNames(),
		Level:    int(gic.Level128),
		Warmup:   5,
		Trials:   100,
		Identity: "alice@example.org",
		GQ: GQConfig{
			ModulusBits:   3072,
			Exponent:      65537,
			ChallengeBits: 128,
		},
		OutputDir: "bench_out",
		Formats:   []string{FormatCSV, FormatJSON},
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config %s", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config %s", path)
	}
	return cfg, cfg.Validate()
}

// Validate checks the config before a run.
func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("no backends selected")
	}
	seen := map[string]bool{}
	for _, name := range c.Backends {
		if _, ok := factories[name]; !ok {
			return errors.Errorf("unknown backend %q", name)
		}
		if seen[name] {
			return errors.Errorf("backend %q listed twice", name)
		}
		seen[name] = true
	}
	if gic.SecurityLevel(c.Level) != gic.Level128 {
		return errors.Errorf("unsupported security level %d", c.Level)
	}
	if c.Warmup < 0 {
		return errors.Errorf("negative warm-up count %d", c.Warmup)
	}
	if c.Trials <= 0 {
		return errors.Errorf("trial count must be positive, got %d", c.Trials)
	}
	if len(c.Identity) > gic.MaxIdentityLength {
		return errors.Errorf("identity longer than %d bytes", gic.MaxIdentityLength)
	}
	if _, err := c.seed(); err != nil {
		return err
	}
	for _, f := range c.Formats {
		switch f {
		case FormatCSV, FormatJSON, FormatHTML:
		default:
			return errors.Errorf("unknown output format %q", f)
		}
	}
	return nil
}

func (c Config) seed() ([]byte, error) {
	if c.Seed == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(c.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "seed is not hex")
	}
	return seed, nil
}
