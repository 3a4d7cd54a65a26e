/*
Package config loads the training configuration from YAML, then applies
SLEEPNET_* environment overrides and fills defaults for unset values.
*/
package config

import (
	"go-ml.dev/pkg/sleepnet/fu"
	"go-ml.dev/pkg/sleepnet/model"
	"go-ml.dev/pkg/zorros"
	"gopkg.in/yaml.v3"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
)

const (
	DefaultPath    = "sleepnet.yaml"
	DefaultData    = "Sleep_health_and_lifestyle_dataset.csv"
	DefaultOutput  = "."
	DefaultVariant = "categorical"
	DefaultSeed    = 42
	DefaultTest    = 0.2
	DefaultValid   = 0.2
	DefaultRunLog  = "runs.db"
)

type Config struct {
	Data      string  `yaml:"data"`
	Output    string  `yaml:"output_dir"`
	Variant   string  `yaml:"variant"`
	Seed      int64   `yaml:"seed"`
	TestSize  float64 `yaml:"test_size"`
	ValidSize float64 `yaml:"validation_split"`
	// Epochs, BatchSize and Patience are taken from the variant preset when zero
	Epochs    int  `yaml:"epochs"`
	BatchSize int  `yaml:"batch_size"`
	Patience  int  `yaml:"patience"`
	Quiet     bool `yaml:"quiet"`
	// RunLog is the sqlite history path relative to Output, "-" disables it
	RunLog string `yaml:"run_log"`
	// Hyper overrides network fields by name, see nnet.Network.Hyper
	Hyper model.Params `yaml:"hyper"`
}

/*
Load reads the file at path. An empty path means SLEEPNET_CONFIG or the
default file, which may be absent.
*/
func Load(path string) (cfg Config, err error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
		if p := os.Getenv("SLEEPNET_CONFIG"); p != "" {
			path, explicit = p, true
		}
	}
	data, err := ioutil.ReadFile(path)
	if err == nil {
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, zorros.Wrapf(err, "error parsing %v: %v", path, err.Error())
		}
	} else if explicit || !os.IsNotExist(err) {
		return cfg, zorros.Wrapf(err, "failed to read config %v: %v", path, err.Error())
	}
	if err = cfg.env(); err != nil {
		return
	}
	cfg.Defaults()
	return cfg, cfg.Validate()
}

func (cfg *Config) env() (err error) {
	envOverride(&cfg.Data, "SLEEPNET_DATA")
	envOverride(&cfg.Output, "SLEEPNET_OUTPUT_DIR")
	envOverride(&cfg.Variant, "SLEEPNET_VARIANT")
	envOverride(&cfg.RunLog, "SLEEPNET_RUN_LOG")
	if err = envOverrideInt64(&cfg.Seed, "SLEEPNET_SEED"); err != nil {
		return
	}
	if err = envOverrideInt(&cfg.Epochs, "SLEEPNET_EPOCHS"); err != nil {
		return
	}
	if err = envOverrideInt(&cfg.BatchSize, "SLEEPNET_BATCH_SIZE"); err != nil {
		return
	}
	if err = envOverrideInt(&cfg.Patience, "SLEEPNET_PATIENCE"); err != nil {
		return
	}
	if err = envOverrideFloat(&cfg.TestSize, "SLEEPNET_TEST_SIZE"); err != nil {
		return
	}
	if err = envOverrideFloat(&cfg.ValidSize, "SLEEPNET_VALIDATION_SPLIT"); err != nil {
		return
	}
	if v := os.Getenv("SLEEPNET_QUIET"); v != "" {
		if cfg.Quiet, err = strconv.ParseBool(v); err != nil {
			return zorros.Errorf("invalid SLEEPNET_QUIET '%v': %v", v, err.Error())
		}
	}
	return
}

/*
Defaults fills unset values
*/
func (cfg *Config) Defaults() {
	cfg.Data = fu.Fnzs(cfg.Data, DefaultData)
	cfg.Output = fu.Fnzs(cfg.Output, DefaultOutput)
	cfg.Variant = fu.Fnzs(cfg.Variant, DefaultVariant)
	cfg.RunLog = fu.Fnzs(cfg.RunLog, DefaultRunLog)
	if cfg.Seed == 0 {
		cfg.Seed = DefaultSeed
	}
	if cfg.TestSize == 0 {
		cfg.TestSize = DefaultTest
	}
	if cfg.ValidSize == 0 {
		cfg.ValidSize = DefaultValid
	}
}

/*
Validate checks value ranges, the variant itself is checked by the pipeline
*/
func (cfg *Config) Validate() error {
	if cfg.TestSize <= 0 || cfg.TestSize >= 1 {
		return zorros.Errorf("invalid test_size '%v': must be between 0 and 1", cfg.TestSize)
	}
	if cfg.ValidSize < 0 || cfg.ValidSize >= 1 {
		return zorros.Errorf("invalid validation_split '%v': must be in [0, 1)", cfg.ValidSize)
	}
	if cfg.Epochs < 0 || cfg.BatchSize < 0 || cfg.Patience < 0 {
		return zorros.Errorf("epochs, batch_size and patience must not be negative")
	}
	return nil
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.TrimSpace(val)
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return zorros.Errorf("invalid %v '%v': %v", envKey, val, err.Error())
		}
		*field = n
	}
	return nil
}

func envOverrideInt64(field *int64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return zorros.Errorf("invalid %v '%v': %v", envKey, val, err.Error())
		}
		*field = n
	}
	return nil
}

func envOverrideFloat(field *float64, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return zorros.Errorf("invalid %v '%v': %v", envKey, val, err.Error())
		}
		*field = f
	}
	return nil
}
