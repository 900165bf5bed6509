// Package config holds the settings of a training run: where the cluster is, how many
// workers train in parallel, how much memory they get, and how weight buffers are framed
// between stages.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/parallel"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/serialization"
	"github.com/TrellixVulnTeam/cerebro-ds-KPGI/internal/tensor"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete run configuration.
type Config struct {
	AppName  string   `yaml:"app_name"`
	Cluster  Cluster  `yaml:"cluster"`
	Store    Store    `yaml:"store"`
	Training Training `yaml:"training"`
	Codec    Codec    `yaml:"codec"`
}

// Cluster describes the compute cluster the stages run on.
type Cluster struct {
	Endpoint       string `yaml:"endpoint"`
	Workers        int    `yaml:"workers"`
	ExecutorMemory string `yaml:"executor_memory"` // e.g. "100G", "512MiB"
	WorkerMemory   string `yaml:"worker_memory"`
	ExecutorCores  int    `yaml:"executor_cores"`
}

// Store is where prepared data and checkpoints live.
type Store struct {
	Root string `yaml:"root"`
}

// Training holds per-run training settings.
type Training struct {
	Epochs int   `yaml:"epochs"`
	Seed   int64 `yaml:"seed"`
}

// Codec selects the framing of weight buffers between stages.
type Codec struct {
	Envelope    bool   `yaml:"envelope"`
	ElementType string `yaml:"element_type"` // "float32" or "float16"; only used with Envelope
	Checksum    bool   `yaml:"checksum"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		AppName: "cerebro",
		Cluster: Cluster{
			Endpoint:       "spark://10.10.1.1:7077",
			Workers:        8,
			ExecutorMemory: "100G",
			WorkerMemory:   "100G",
			ExecutorCores:  1,
		},
		Store:    Store{Root: "hdfs://master:9000/tmp"},
		Training: Training{Epochs: 10},
		Codec:    Codec{ElementType: tensor.Float32.String()},
	}
}

// Load reads a YAML file on top of Default and validates the result.
func Load(path string) (*Config, error) {
	//nolint:gosec // G304: config path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %q", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "config %q", path)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown keys are errors.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "decoding YAML")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting is usable.
func (c *Config) Validate() error {
	if c.Cluster.Endpoint == "" {
		return errors.Wrap(ErrInvalidConfig, "cluster.endpoint is empty")
	}
	if c.Cluster.Workers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "cluster.workers must be positive, got %d", c.Cluster.Workers)
	}
	if c.Cluster.ExecutorCores < 1 {
		return errors.Wrapf(ErrInvalidConfig, "cluster.executor_cores must be positive, got %d", c.Cluster.ExecutorCores)
	}
	if _, err := c.ExecutorMemoryBytes(); err != nil {
		return err
	}
	if _, err := c.WorkerMemoryBytes(); err != nil {
		return err
	}
	if c.Training.Epochs < 1 {
		return errors.Wrapf(ErrInvalidConfig, "training.epochs must be positive, got %d", c.Training.Epochs)
	}
	if _, ok := tensor.ParseDataType(c.Codec.ElementType); !ok {
		return errors.Wrapf(ErrInvalidConfig, "codec.element_type %q is not supported", c.Codec.ElementType)
	}
	if !c.Codec.Envelope && (c.Codec.Checksum || c.Codec.ElementType == tensor.Float16.String()) {
		return errors.Wrap(ErrInvalidConfig, "codec.checksum and float16 elements need codec.envelope")
	}
	return nil
}

// ExecutorMemoryBytes parses Cluster.ExecutorMemory.
func (c *Config) ExecutorMemoryBytes() (uint64, error) {
	return parseMemory("cluster.executor_memory", c.Cluster.ExecutorMemory)
}

// WorkerMemoryBytes parses Cluster.WorkerMemory.
func (c *Config) WorkerMemoryBytes() (uint64, error) {
	return parseMemory("cluster.worker_memory", c.Cluster.WorkerMemory)
}

func parseMemory(key, value string) (uint64, error) {
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
	}
	if n == 0 {
		return 0, errors.Wrapf(ErrInvalidConfig, "%s must be positive", key)
	}
	return n, nil
}

// Framing returns the buffer framing selected by the codec section.
func (c *Config) Framing() serialization.Framing {
	dtype, _ := tensor.ParseDataType(c.Codec.ElementType)
	return serialization.Framing{
		Enveloped: c.Codec.Envelope,
		Options: serialization.WrapOptions{
			ElementType: dtype,
			Checksum:    c.Codec.Checksum,
		},
	}
}

// Parallel returns the fan-out settings for the configured number of workers.
func (c *Config) Parallel() parallel.Config {
	return parallel.WithWorkers(c.Cluster.Workers)
}

// Encode renders the configuration as YAML.
func (c *Config) Encode() ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "encoding YAML")
}
