package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Test kinds understood by the suite builder.
const (
	KindSleep     = "sleep"
	KindCommand   = "command"
	KindContainer = "container"
)

type Config struct {
	Name    string   `yaml:"name"`
	Cycles  int      `yaml:"cycles"`
	Timeout Duration `yaml:"timeout"`
	EnvFile string   `yaml:"env_file"`
	Sort    bool     `yaml:"sort"`
	Results Results  `yaml:"results"`
	Tests   []Test   `yaml:"tests"`

	// Env holds the variables read from EnvFile.
	Env map[string]string `yaml:"-"`
}

type Test struct {
	Name     string            `yaml:"name"`
	Kind     string            `yaml:"kind"`
	Duration Duration          `yaml:"duration"`
	Command  string            `yaml:"command"`
	Image    string            `yaml:"image"`
	Env      map[string]string `yaml:"env"`
}

type Results struct {
	Dir string `yaml:"dir"`
}

// Duration decodes Go duration strings such as "250ms" or "2m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, fmt.Errorf("invalid environment for %s: %w", path, err)
	}
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if cfg.EnvFile != "" {
		if !filepath.IsAbs(cfg.EnvFile) {
			cfg.EnvFile = filepath.Join(filepath.Dir(path), cfg.EnvFile)
		}
		env, err := godotenv.Read(cfg.EnvFile)
		if err != nil {
			return nil, fmt.Errorf("reading env file %s: %w", cfg.EnvFile, err)
		}
		cfg.Env = env
	}
	return &cfg, nil
}

// applyEnv lets CYCLEBENCH_CYCLES and CYCLEBENCH_TIMEOUT override the file.
func applyEnv(cfg *Config) error {
	if v := os.Getenv("CYCLEBENCH_CYCLES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("CYCLEBENCH_CYCLES: %w", err)
		}
		if n < 1 {
			return fmt.Errorf("CYCLEBENCH_CYCLES must be at least 1, got %d", n)
		}
		cfg.Cycles = n
	}
	if v := os.Getenv("CYCLEBENCH_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("CYCLEBENCH_TIMEOUT: %w", err)
		}
		cfg.Timeout = Duration(d)
	}
	return nil
}

func validate(cfg *Config) error {
	if cfg.Name == "" {
		cfg.Name = "benchmark"
	}
	if cfg.Cycles == 0 {
		cfg.Cycles = 1
	}
	if cfg.Cycles < 1 {
		return fmt.Errorf("cycles must be at least 1")
	}
	if cfg.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	if len(cfg.Tests) == 0 {
		return fmt.Errorf("no tests defined")
	}
	for i := range cfg.Tests {
		t := &cfg.Tests[i]
		if t.Name == "" {
			return fmt.Errorf("test %d: name is required", i)
		}
		if t.Kind == "" {
			t.Kind = KindCommand
		}
		switch t.Kind {
		case KindSleep:
			if t.Duration <= 0 {
				return fmt.Errorf("test %q: duration is required for sleep tests", t.Name)
			}
		case KindCommand:
			if t.Command == "" {
				return fmt.Errorf("test %q: command is required", t.Name)
			}
		case KindContainer:
			if t.Image == "" {
				return fmt.Errorf("test %q: image is required for container tests", t.Name)
			}
		default:
			return fmt.Errorf("test %q: unknown kind %q", t.Name, t.Kind)
		}
	}
	return nil
}
