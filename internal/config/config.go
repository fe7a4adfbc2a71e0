// internal/config/config.go
//
// This package handles the shop catalog and the .smartrepair directory
// structure. Every project that uses SMART-REPAIR gets a .smartrepair/
// folder created in its root holding the catalog, logs and saved state.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// SmartRepairDir is the name of the directory we create in each project.
	SmartRepairDir = ".smartrepair"

	catalogFileName = "catalog.yaml"
)

const defaultCatalogYAML = `# smart-repair shop catalog
version: 1

# Canonical production sequence. Order matters: tasks of an order are
# executed top to bottom, and the scheduler uses this ordering as the
# deterministic tie-break between equal-priority tasks.
task_types:
  - name: "Smontaggio e rimontaggio parti"
    duration_hours: 4
    color: "#4CAF50"
  - name: "Raddrizzatura lamierati"
    duration_hours: 8
    color: "#2196F3"
  - name: "Preparazione e stuccatura"
    duration_hours: 6
    color: "#FFC107"
  - name: "Verniciatura"
    duration_hours: 5
    color: "#FF5722"
  - name: "Lucidatura e rifiniture"
    duration_hours: 3
    color: "#9C27B0"
  - name: "Diagnostica"
    duration_hours: 2
    color: "#00BCD4"
  - name: "Collaudo e finitura"
    duration_hours: 2
    color: "#8BC34A"

workers:
  - Luca
  - Matteo
  - Alessandro
  - Francesca
  - Giulia

# Per-type eligibility. Types not listed here accept every worker.
# eligibility:
#   Verniciatura: [Luca, Giulia]
eligibility: {}
`

// TaskType declares one entry of the canonical production sequence.
type TaskType struct {
	Name          string `yaml:"name"`
	DurationHours int    `yaml:"duration_hours"`
	Color         string `yaml:"color,omitempty"`
}

// Catalog models .smartrepair/catalog.yaml: the ordered task-type table,
// the worker roster and the per-type eligibility map.
type Catalog struct {
	Version     int                 `yaml:"version"`
	TaskTypes   []TaskType          `yaml:"task_types"`
	Workers     []string            `yaml:"workers"`
	Eligibility map[string][]string `yaml:"eligibility,omitempty"`
}

// Config holds the runtime configuration for SMART-REPAIR.
type Config struct {
	// ProjectDir is the directory where the user ran `smartrepair` from.
	ProjectDir string

	// SmartRepairProjectDir is ProjectDir/.smartrepair.
	SmartRepairProjectDir string

	Catalog Catalog
}

// InitSmartRepairDir creates the .smartrepair directory structure in the
// given project directory and seeds the default catalog when absent.
//
// Structure created:
// .smartrepair/
// ├── logs/      <- scheduling pass log
// ├── state/     <- persisted orders/tasks/scores snapshot
// └── catalog.yaml
func InitSmartRepairDir(projectDir string) error {
	dir := filepath.Join(projectDir, SmartRepairDir)
	for _, sub := range []string{
		filepath.Join(dir, "logs"),
		filepath.Join(dir, "state"),
	} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return err
		}
	}
	return ensureCatalog(filepath.Join(dir, catalogFileName))
}

// NewConfig creates a Config populated with the project catalog. A
// missing catalog file falls back to the built-in defaults.
func NewConfig(projectDir string) (*Config, error) {
	cfg := &Config{
		ProjectDir:            projectDir,
		SmartRepairProjectDir: filepath.Join(projectDir, SmartRepairDir),
		Catalog:               DefaultCatalog(),
	}
	if err := cfg.loadCatalog(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LogsDir returns the path to the logs directory.
func (c *Config) LogsDir() string {
	return filepath.Join(c.SmartRepairProjectDir, "logs")
}

// StateDir returns the path to the state directory.
func (c *Config) StateDir() string {
	return filepath.Join(c.SmartRepairProjectDir, "state")
}

// CatalogPath returns the on-disk location for the catalog file.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.SmartRepairProjectDir, catalogFileName)
}

// DefaultCatalog returns the built-in shop catalog.
func DefaultCatalog() Catalog {
	var cat Catalog
	// The embedded document is the source of truth; parsing it cannot
	// fail unless the literal itself is broken.
	if err := yaml.Unmarshal([]byte(defaultCatalogYAML), &cat); err != nil {
		panic(fmt.Sprintf("config: default catalog is invalid: %v", err))
	}
	cat.applyDefaults()
	cat.normalize()
	return cat
}

func (c *Config) loadCatalog() error {
	path := c.CatalogPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed Catalog
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	c.Catalog = parsed
	return nil
}

// TypeNames returns the canonical production sequence in order.
func (cat Catalog) TypeNames() []string {
	names := make([]string, len(cat.TaskTypes))
	for i, tt := range cat.TaskTypes {
		names[i] = tt.Name
	}
	return names
}

// TypePosition returns the index of the task type in the canonical
// sequence, or -1 when the type is unknown.
func (cat Catalog) TypePosition(name string) int {
	for i, tt := range cat.TaskTypes {
		if tt.Name == name {
			return i
		}
	}
	return -1
}

// Duration returns the estimated work budget for the task type.
func (cat Catalog) Duration(name string) (time.Duration, bool) {
	for _, tt := range cat.TaskTypes {
		if tt.Name == name {
			return time.Duration(tt.DurationHours) * time.Hour, true
		}
	}
	return 0, false
}

// Color returns the board color configured for the task type.
func (cat Catalog) Color(name string) string {
	for _, tt := range cat.TaskTypes {
		if tt.Name == name {
			return tt.Color
		}
	}
	return ""
}

// EligibleWorkers returns the workers allowed to take the task type.
// Types without an explicit eligibility entry accept the whole roster.
func (cat Catalog) EligibleWorkers(name string) []string {
	if workers, ok := cat.Eligibility[name]; ok {
		out := make([]string, len(workers))
		copy(out, workers)
		return out
	}
	out := make([]string, len(cat.Workers))
	copy(out, cat.Workers)
	return out
}

// Validate checks catalog consistency.
func (cat Catalog) Validate() error {
	if cat.Version < 1 {
		return fmt.Errorf("catalog version must be >= 1")
	}
	if len(cat.TaskTypes) == 0 {
		return fmt.Errorf("task_types must not be empty")
	}
	seen := map[string]bool{}
	for i, tt := range cat.TaskTypes {
		if tt.Name == "" {
			return fmt.Errorf("task_types[%d]: name is required", i)
		}
		if seen[tt.Name] {
			return fmt.Errorf("task_types[%d]: duplicate type %q", i, tt.Name)
		}
		seen[tt.Name] = true
		if tt.DurationHours <= 0 {
			return fmt.Errorf("task_types[%d]: duration_hours must be positive", i)
		}
	}
	if len(cat.Workers) == 0 {
		return fmt.Errorf("workers must not be empty")
	}
	roster := map[string]bool{}
	for i, w := range cat.Workers {
		if w == "" {
			return fmt.Errorf("workers[%d]: name is required", i)
		}
		if roster[w] {
			return fmt.Errorf("workers[%d]: duplicate worker %q", i, w)
		}
		roster[w] = true
	}
	for taskType, workers := range cat.Eligibility {
		if !seen[taskType] {
			return fmt.Errorf("eligibility[%s]: unknown task type", taskType)
		}
		for _, w := range workers {
			if !roster[w] {
				return fmt.Errorf("eligibility[%s]: unknown worker %q", taskType, w)
			}
		}
	}
	return nil
}

func (cat *Catalog) applyDefaults() {
	if cat.Version == 0 {
		cat.Version = 1
	}
	if cat.Eligibility == nil {
		cat.Eligibility = map[string][]string{}
	}
}

func (cat *Catalog) normalize() {
	for i := range cat.TaskTypes {
		cat.TaskTypes[i].Name = strings.TrimSpace(cat.TaskTypes[i].Name)
	}
	for i := range cat.Workers {
		cat.Workers[i] = strings.TrimSpace(cat.Workers[i])
	}
	for taskType, workers := range cat.Eligibility {
		for i := range workers {
			workers[i] = strings.TrimSpace(workers[i])
		}
		cat.Eligibility[taskType] = workers
	}
}

func ensureCatalog(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultCatalogYAML), 0o644)
}
