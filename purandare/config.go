package purandare

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/unixpickle/essentials"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	"github.com/unixpickle/wordsense/cluster"
	"github.com/unixpickle/wordsense/diskmat"
)

const (
	DefaultWindowSize         = 5
	DefaultContextWindowSize  = 20
	DefaultClusters           = 7
	DefaultRetentionThreshold = 0.02

	// DefaultCutoff is the chi-square critical value for
	// p = 0.05 with one degree of freedom.
	DefaultCutoff = 3.841

	DefaultAlgorithm = "hac"
)

// SenseOrder decides how extra senses of a word are
// numbered.
type SenseOrder string

const (
	// ClusterOrder numbers senses in cluster order.
	ClusterOrder SenseOrder = "cluster"

	// SizeOrder numbers senses from the largest cluster to
	// the smallest.
	SizeOrder SenseOrder = "size"
)

// ClusterConfig selects the clustering algorithm.
type ClusterConfig struct {
	Algorithm string `yaml:"algorithm"`

	cluster.Options `yaml:",inline"`
}

// Config configures a Model.
//
// Zero fields take their defaults.
type Config struct {
	// WindowSize is the number of tokens on each side of a
	// focus word that count as co-occurring.
	WindowSize int `yaml:"window_size"`

	// ContextWindowSize is the number of tokens on each
	// side of an occurrence used to build its context row.
	ContextWindowSize int `yaml:"context_window_size"`

	// Clusters is the number of clusters requested for each
	// term.
	Clusters int `yaml:"clusters"`

	// RetentionThreshold is the share of a term's contexts a
	// cluster must exceed to become a sense.
	RetentionThreshold float64 `yaml:"retention_threshold"`

	// Cutoff is the G2 value a feature must exceed.
	Cutoff float64 `yaml:"cutoff"`

	// Significance, if non-zero, overrides Cutoff with the
	// chi-square critical value at this p-value.
	Significance float64 `yaml:"significance"`

	// Directional, if true, only counts words that follow
	// a focus word as co-occurring with it.
	Directional bool `yaml:"directional"`

	SenseOrder SenseOrder `yaml:"sense_order"`

	// Workers is the parallelism of the concurrent stages.
	// If 0, GOMAXPROCS is used.
	Workers int `yaml:"workers"`

	// SpoolDir is where the spooled corpus is written.
	SpoolDir string `yaml:"spool_dir"`

	Matrix     diskmat.Config `yaml:"matrix"`
	Clustering ClusterConfig  `yaml:"clustering"`

	// Logger receives progress messages.
	// If nil, slog.Default() is used.
	Logger *slog.Logger `yaml:"-"`
}

// LoadConfig reads a YAML configuration file.
func LoadConfig(path string) (c *Config, err error) {
	defer essentials.AddCtxTo("load config", &err)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c = &Config{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, err
	}
	return c, nil
}

// CutoffForSignificance returns the G2 critical value for
// the p-value, using a chi-square distribution with one
// degree of freedom.
func CutoffForSignificance(p float64) float64 {
	return distuv.ChiSquared{K: 1}.Quantile(1 - p)
}

// Validate checks a Config after defaults are applied.
func (c *Config) Validate() error {
	switch {
	case c.WindowSize < 1:
		return fmt.Errorf("purandare: window size must be positive (got %d)", c.WindowSize)
	case c.ContextWindowSize < 1:
		return fmt.Errorf("purandare: context window size must be positive (got %d)",
			c.ContextWindowSize)
	case c.Clusters < 1:
		return cluster.ErrClusterCount
	case c.RetentionThreshold < 0 || c.RetentionThreshold >= 1:
		return fmt.Errorf("purandare: retention threshold must be in [0, 1) (got %f)",
			c.RetentionThreshold)
	case c.Significance < 0 || c.Significance >= 1:
		return fmt.Errorf("purandare: significance must be in (0, 1) (got %f)", c.Significance)
	case c.Cutoff < 0:
		return fmt.Errorf("purandare: cutoff must not be negative (got %f)", c.Cutoff)
	case c.SenseOrder != ClusterOrder && c.SenseOrder != SizeOrder:
		return fmt.Errorf("purandare: unknown sense order %q", c.SenseOrder)
	case c.Workers < 1:
		return fmt.Errorf("purandare: workers must be positive (got %d)", c.Workers)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.WindowSize == 0 {
		c.WindowSize = DefaultWindowSize
	}
	if c.ContextWindowSize == 0 {
		c.ContextWindowSize = DefaultContextWindowSize
	}
	if c.Clusters == 0 {
		c.Clusters = DefaultClusters
	}
	if c.RetentionThreshold == 0 {
		c.RetentionThreshold = DefaultRetentionThreshold
	}
	if c.Significance > 0 && c.Significance < 1 {
		c.Cutoff = CutoffForSignificance(c.Significance)
	} else if c.Cutoff == 0 {
		c.Cutoff = DefaultCutoff
	}
	if c.SenseOrder == "" {
		c.SenseOrder = ClusterOrder
	}
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.Clustering.Algorithm == "" {
		c.Clustering.Algorithm = DefaultAlgorithm
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}
