package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/rasterbench/internal/extrapolation"
	"github.com/banshee-data/rasterbench/internal/filter"
)

// Defaults for the convolution benchmark.
const (
	DefaultImageSize     = 2048
	DefaultKernelSize    = 5
	DefaultExtrapolation = "nearest"
	DefaultOperation     = "convolution"
	DefaultMethod        = "direct"
	DefaultRuns          = 1
)

// BenchConfig holds the convolution benchmark parameters. Fields omitted
// from a JSON file are nil and fall back to defaults through the Get*
// accessors, so partial configs are safe.
type BenchConfig struct {
	ImageSize     *int     `json:"image,omitempty"`
	KernelSize    *int     `json:"kernel,omitempty"`
	Extrapolation *string  `json:"extrapolation,omitempty"`
	Constant      *float64 `json:"cval,omitempty"`
	Operation     *string  `json:"op,omitempty"`
	Method        *string  `json:"method,omitempty"`
	Runs          *int     `json:"runs,omitempty"`

	// Output sinks (optional)
	Database *string `json:"db,omitempty"`
	TSV      *string `json:"tsv,omitempty"`
}

// EmptyBenchConfig returns a BenchConfig with all fields set to nil.
func EmptyBenchConfig() *BenchConfig {
	return &BenchConfig{}
}

// LoadBenchConfig loads a BenchConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadBenchConfig(path string) (*BenchConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyBenchConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *BenchConfig) Validate() error {
	if c.ImageSize != nil && *c.ImageSize <= 0 {
		return fmt.Errorf("image must be positive, got %d", *c.ImageSize)
	}
	if c.KernelSize != nil && *c.KernelSize <= 0 {
		return fmt.Errorf("kernel must be positive, got %d", *c.KernelSize)
	}
	if c.Runs != nil && *c.Runs <= 0 {
		return fmt.Errorf("runs must be positive, got %d", *c.Runs)
	}
	if c.Extrapolation != nil {
		if _, err := extrapolation.Parse(*c.Extrapolation); err != nil {
			return err
		}
	}
	if c.Operation != nil {
		if _, err := filter.ParseOp(*c.Operation); err != nil {
			return err
		}
	}
	if c.Method != nil {
		if _, err := filter.ParseMethod(*c.Method); err != nil {
			return err
		}
	}
	return nil
}

// Merge copies every non-nil field of other into c.
func (c *BenchConfig) Merge(other *BenchConfig) {
	if other == nil {
		return
	}
	if other.ImageSize != nil {
		c.ImageSize = other.ImageSize
	}
	if other.KernelSize != nil {
		c.KernelSize = other.KernelSize
	}
	if other.Extrapolation != nil {
		c.Extrapolation = other.Extrapolation
	}
	if other.Constant != nil {
		c.Constant = other.Constant
	}
	if other.Operation != nil {
		c.Operation = other.Operation
	}
	if other.Method != nil {
		c.Method = other.Method
	}
	if other.Runs != nil {
		c.Runs = other.Runs
	}
	if other.Database != nil {
		c.Database = other.Database
	}
	if other.TSV != nil {
		c.TSV = other.TSV
	}
}

// GetImageSize returns the image side length or the default.
func (c *BenchConfig) GetImageSize() int {
	if c.ImageSize == nil {
		return DefaultImageSize
	}
	return *c.ImageSize
}

// GetKernelSize returns the kernel side length or the default.
func (c *BenchConfig) GetKernelSize() int {
	if c.KernelSize == nil {
		return DefaultKernelSize
	}
	return *c.KernelSize
}

// GetExtrapolation returns the boundary mode name or the default.
func (c *BenchConfig) GetExtrapolation() string {
	if c.Extrapolation == nil {
		return DefaultExtrapolation
	}
	return *c.Extrapolation
}

// GetConstant returns the value used outside the image in constant mode.
func (c *BenchConfig) GetConstant() float64 {
	if c.Constant == nil {
		return 0
	}
	return *c.Constant
}

// GetOperation returns the filter operation name or the default.
func (c *BenchConfig) GetOperation() string {
	if c.Operation == nil {
		return DefaultOperation
	}
	return *c.Operation
}

// GetMethod returns the computation method name or the default.
func (c *BenchConfig) GetMethod() string {
	if c.Method == nil {
		return DefaultMethod
	}
	return *c.Method
}

// GetRuns returns the number of timed repetitions or the default.
func (c *BenchConfig) GetRuns() int {
	if c.Runs == nil {
		return DefaultRuns
	}
	return *c.Runs
}

// GetDatabase returns the SQLite path, empty when disabled.
func (c *BenchConfig) GetDatabase() string {
	if c.Database == nil {
		return ""
	}
	return *c.Database
}

// GetTSV returns the TSV export path, empty when disabled.
func (c *BenchConfig) GetTSV() string {
	if c.TSV == nil {
		return ""
	}
	return *c.TSV
}
