// Package config handles isingsim configuration loading and wires the YAML
// record into the condprob, topology and network packages.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/rrtucci/ising-dbnet/condprob"
	"github.com/rrtucci/ising-dbnet/network"
	"github.com/rrtucci/ising-dbnet/storage"
	"github.com/rrtucci/ising-dbnet/topology"
	"gopkg.in/yaml.v3"
)

// ErrInvalid indicates a configuration value that cannot be wired.
var ErrInvalid = errors.New("config: invalid value")

// Config is the root configuration structure.
type Config struct {
	Model    ModelConfig    `yaml:"model"`
	Topology TopologyConfig `yaml:"topology"`
	Run      RunConfig      `yaml:"run"`
	Scan     ScanConfig     `yaml:"scan"`
	Storage  StorageConfig  `yaml:"storage"`
	Export   ExportConfig   `yaml:"export"`
}

// ModelConfig holds the physical constants.
type ModelConfig struct {
	Beta float64 `yaml:"beta"`
	JJ   float64 `yaml:"jj"`
	H    float64 `yaml:"h"`
	Lam  float64 `yaml:"lam"`
	Gate string  `yaml:"gate"` // "soft" or "hard"
}

// TopologyConfig selects a neighbor-table strategy.
type TopologyConfig struct {
	Kind     string `yaml:"kind"` // grid, ring, path, isolated, tree
	Rows     int    `yaml:"rows"`
	Cols     int    `yaml:"cols"`
	Sites    int    `yaml:"sites"` // ring, path, isolated
	Width    int    `yaml:"width"` // tree: top roots per row
	Boundary string `yaml:"boundary"`
	Order    string `yaml:"order"`  // neighbor order: emission, ascending, descending
	Sorted   bool   `yaml:"sorted"` // shorthand for order: ascending
}

// RunConfig holds the network run parameters.
type RunConfig struct {
	Steps   int     `yaml:"steps"`
	Prior   string  `yaml:"prior"` // uniform, fixed, random
	P0      float64 `yaml:"p0"`
	Order   string  `yaml:"order"`
	Workers int     `yaml:"workers"`
	Seed    int64   `yaml:"seed"`
}

// ScanConfig sweeps beta_hat = beta*jj at fixed jj.
type ScanConfig struct {
	From   float64 `yaml:"from"`
	To     float64 `yaml:"to"`
	Points int     `yaml:"points"`
}

// StorageConfig selects the run store.
type StorageConfig struct {
	Backend string `yaml:"backend"` // memory or sqlite
	Path    string `yaml:"path"`
}

// ExportConfig controls the files written after a run.
type ExportConfig struct {
	Dir    string `yaml:"dir"`
	CSV    bool   `yaml:"csv"`
	DOT    bool   `yaml:"dot"`
	SVG    bool   `yaml:"svg"`
	Render bool   `yaml:"render"`
	Engine string `yaml:"engine"`
	Format string `yaml:"format"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Beta: 1,
			JJ:   1,
			H:    0.1,
			Gate: "soft",
		},
		Topology: TopologyConfig{
			Kind:     "grid",
			Rows:     5,
			Cols:     5,
			Boundary: "clamped",
		},
		Run: RunConfig{
			Steps:   20,
			Prior:   "fixed",
			P0:      0.4,
			Order:   "forward",
			Workers: 1,
			Seed:    1,
		},
		Scan: ScanConfig{
			From:   0.2,
			To:     2,
			Points: 10,
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "runs.db",
		},
		Export: ExportConfig{
			Dir:    "./out",
			CSV:    true,
			DOT:    true,
			SVG:    true,
			Engine: "neato",
			Format: "png",
		},
	}
}

// Load loads configuration from a file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from path, or returns default if not found.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	return Load(path)
}

// Save saves configuration to a file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitConfig creates a default config file if it doesn't exist.
func InitConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Default().Save(path)
}

// Validate checks that every section can be wired.
func (c *Config) Validate() error {
	if _, err := c.BuildModel(); err != nil {
		return err
	}
	if _, err := c.BuildTopology(); err != nil {
		return err
	}
	if _, err := c.NetworkConfig(); err != nil {
		return err
	}
	switch c.Storage.Backend {
	case "", "memory", "sqlite":
	default:
		return fmt.Errorf("Validate: storage backend %q: %w", c.Storage.Backend, ErrInvalid)
	}
	if c.Scan.Points < 1 || c.Scan.From < 0 || c.Scan.To < c.Scan.From {
		return fmt.Errorf("Validate: scan [%v, %v] with %d points: %w", c.Scan.From, c.Scan.To, c.Scan.Points, ErrInvalid)
	}
	return nil
}

// BuildModel returns the conditional probability model.
func (c *Config) BuildModel() (condprob.Model, error) {
	var opts []condprob.Option
	switch strings.ToLower(c.Model.Gate) {
	case "", "soft":
	case "hard":
		opts = append(opts, condprob.WithHardGate())
	default:
		return condprob.Model{}, fmt.Errorf("BuildModel: gate %q: %w", c.Model.Gate, ErrInvalid)
	}
	if math.IsNaN(c.Model.Lam) || math.IsInf(c.Model.Lam, 0) {
		return condprob.Model{}, fmt.Errorf("BuildModel: lam=%v: %w", c.Model.Lam, ErrInvalid)
	}
	if c.Model.Lam != 0 {
		opts = append(opts, condprob.WithSelfCoupling(c.Model.Lam))
	}
	m, err := condprob.New(c.Model.Beta, c.Model.JJ, c.Model.H, opts...)
	if err != nil {
		return condprob.Model{}, fmt.Errorf("BuildModel: %v: %w", err, ErrInvalid)
	}
	return m, nil
}

// BuildTopology returns the neighbor table.
func (c *Config) BuildTopology() (*topology.Table, error) {
	t := c.Topology
	boundary, ok := topology.ParseBoundary(t.Boundary)
	if !ok {
		return nil, fmt.Errorf("BuildTopology: boundary %q: %w", t.Boundary, ErrInvalid)
	}
	order, ok := topology.ParseOrder(t.Order)
	if !ok {
		return nil, fmt.Errorf("BuildTopology: order %q: %w", t.Order, ErrInvalid)
	}
	if t.Sorted && order == topology.Emission {
		order = topology.Ascending
	}
	opts := []topology.Option{topology.WithBoundary(boundary), topology.WithOrder(order)}

	var ctor topology.Constructor
	switch strings.ToLower(t.Kind) {
	case "grid":
		ctor = topology.Grid(t.Rows, t.Cols)
	case "ring":
		ctor = topology.Ring(t.Sites)
	case "path":
		ctor = topology.Path(t.Sites)
	case "isolated":
		ctor = topology.Isolated(t.Sites)
	case "tree":
		ctor = topology.Tree(t.Width, t.Rows)
	default:
		return nil, fmt.Errorf("BuildTopology: kind %q: %w", t.Kind, ErrInvalid)
	}
	tb, err := topology.Build(opts, ctor)
	if err != nil {
		return nil, fmt.Errorf("BuildTopology: %v: %w", err, ErrInvalid)
	}
	return tb, nil
}

// TopologyLabel is a short human description such as "grid(5x5,clamped)".
func (c *Config) TopologyLabel() string {
	t := c.Topology
	kind := strings.ToLower(t.Kind)
	switch kind {
	case "grid":
		b, _ := topology.ParseBoundary(t.Boundary)
		return fmt.Sprintf("grid(%dx%d,%s)", t.Rows, t.Cols, b)
	case "tree":
		return fmt.Sprintf("tree(%dx%d)", t.Width, t.Rows)
	default:
		return fmt.Sprintf("%s(%d)", kind, t.Sites)
	}
}

// NetworkConfig returns the immutable run configuration.
func (c *Config) NetworkConfig() (network.Config, error) {
	order, err := network.ParseSweepOrder(c.Run.Order)
	if err != nil {
		return network.Config{}, fmt.Errorf("NetworkConfig: %v: %w", err, ErrInvalid)
	}
	var prior network.PriorSpec
	switch strings.ToLower(c.Run.Prior) {
	case "", "uniform":
		prior = network.PriorSpec{Mode: network.PriorUniform}
	case "fixed":
		prior = network.FixedPrior(c.Run.P0)
	case "random":
		prior = network.PriorSpec{Mode: network.PriorRandom}
	default:
		return network.Config{}, fmt.Errorf("NetworkConfig: prior %q: %w", c.Run.Prior, ErrInvalid)
	}
	nc := network.Config{
		Steps:   c.Run.Steps,
		Prior:   prior,
		Order:   order,
		Workers: c.Run.Workers,
		Seed:    c.Run.Seed,
	}
	if err := nc.Validate(); err != nil {
		return network.Config{}, fmt.Errorf("NetworkConfig: %v: %w", err, ErrInvalid)
	}
	return nc, nil
}

// Params records the configuration of a run on a table of the given size.
func (c *Config) Params(sites int) storage.Params {
	gate := strings.ToLower(c.Model.Gate)
	if gate == "" {
		gate = "soft"
	}
	prior := strings.ToLower(c.Run.Prior)
	if prior == "" {
		prior = "uniform"
	}
	return storage.Params{
		Beta:     c.Model.Beta,
		JJ:       c.Model.JJ,
		H:        c.Model.H,
		Lam:      c.Model.Lam,
		Gate:     gate,
		Topology: c.TopologyLabel(),
		Sites:    sites,
		Steps:    c.Run.Steps,
		Prior:    prior,
		P0:       c.Run.P0,
		Order:    c.Run.Order,
		Workers:  c.Run.Workers,
		Seed:     c.Run.Seed,
	}
}

// BetaHats returns the scan grid: Points values evenly spaced on [From, To].
func (c *Config) BetaHats() []float64 {
	s := c.Scan
	if s.Points <= 1 {
		return []float64{s.From}
	}
	out := make([]float64, s.Points)
	step := (s.To - s.From) / float64(s.Points-1)
	for i := range out {
		out[i] = s.From + float64(i)*step
	}
	return out
}
