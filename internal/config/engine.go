package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultConfigPath is the path to the canonical engine defaults file.
const DefaultConfigPath = "config/engine.defaults.json"

// EngineConfig is the root configuration for recording preparation and
// weight derivation. Pointer fields distinguish "unset" from zero so partial
// files and CLI overrides compose; the Get* methods supply defaults.
type EngineConfig struct {
	// Project namespaces recordings in the weight table.
	Project *string `json:"project,omitempty"`

	// Recording preparation
	FrameRate     *int  `json:"frame_rate,omitempty"`
	TargetFPS     *int  `json:"target_fps,omitempty"`
	GestureLength *int  `json:"gesture_length,omitempty"`
	Normalize     *bool `json:"normalize,omitempty"`

	// Weight derivation
	Weighting     *string  `json:"weighting,omitempty"` // uniform, proportional or exponential
	Beta          *float64 `json:"beta,omitempty"`
	ActiveMarkers []string `json:"active_markers,omitempty"`

	// Weight tables
	WeightDB *string `json:"weight_db,omitempty"`
	InfoFile *string `json:"info_file,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptyEngineConfig returns an EngineConfig with all fields unset.
func EmptyEngineConfig() *EngineConfig {
	return &EngineConfig{}
}

// LoadEngineConfig loads an EngineConfig from a JSON file. The path must have
// a .json extension and the file must be under 1MB. Unknown fields are
// rejected so typos do not silently fall back to defaults.
func LoadEngineConfig(path string) (*EngineConfig, error) {
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

	cfg := EmptyEngineConfig()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or one of its parents. Panics if the file cannot be loaded; intended for
// test setup.
func MustLoadDefaultConfig() *EngineConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/mocap/storage
	}
	for _, path := range candidates {
		if cfg, err := LoadEngineConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *EngineConfig) Validate() error {
	if c.FrameRate != nil && *c.FrameRate <= 0 {
		return fmt.Errorf("frame_rate must be positive, got %d", *c.FrameRate)
	}
	if c.TargetFPS != nil && *c.TargetFPS < 0 {
		return fmt.Errorf("target_fps must be non-negative, got %d", *c.TargetFPS)
	}
	if c.GestureLength != nil && *c.GestureLength < 0 {
		return fmt.Errorf("gesture_length must be non-negative, got %d", *c.GestureLength)
	}
	if c.Beta != nil && *c.Beta < 0 {
		return fmt.Errorf("beta must be non-negative, got %f", *c.Beta)
	}
	if c.Weighting != nil {
		switch strings.ToLower(*c.Weighting) {
		case "", "uniform", "proportional", "exponential":
		default:
			return fmt.Errorf("weighting must be uniform, proportional or exponential, got %q", *c.Weighting)
		}
		if strings.EqualFold(*c.Weighting, "exponential") && (c.Beta == nil || *c.Beta == 0) {
			return fmt.Errorf("exponential weighting requires a positive beta")
		}
	}
	seen := make(map[string]bool, len(c.ActiveMarkers))
	for _, m := range c.ActiveMarkers {
		if seen[m] {
			return fmt.Errorf("active_markers lists %q twice", m)
		}
		seen[m] = true
	}
	return nil
}

// GetProject returns the project namespace or the default.
func (c *EngineConfig) GetProject() string {
	if c.Project == nil {
		return "mocap"
	}
	return *c.Project
}

// GetFrameRate returns the recording frame rate or the default.
func (c *EngineConfig) GetFrameRate() int {
	if c.FrameRate == nil {
		return 120
	}
	return *c.FrameRate
}

// GetTargetFPS returns the resampling target; 0 disables resampling.
func (c *EngineConfig) GetTargetFPS() int {
	if c.TargetFPS == nil {
		return 0
	}
	return *c.TargetFPS
}

// GetGestureLength returns the fixed frame count; 0 keeps the length.
func (c *EngineConfig) GetGestureLength() int {
	if c.GestureLength == nil {
		return 0
	}
	return *c.GestureLength
}

// GetNormalize reports whether recordings are std-normalized on load.
func (c *EngineConfig) GetNormalize() bool {
	if c.Normalize == nil {
		return true
	}
	return *c.Normalize
}

// GetWeighting returns the weighting mode in the form accepted by
// mocap.ParseWeightMode: "uniform", "proportional" or "exponential:<beta>".
// An unset mode follows the beta convention: no beta means proportional.
func (c *EngineConfig) GetWeighting() string {
	mode := ""
	if c.Weighting != nil {
		mode = strings.ToLower(*c.Weighting)
	}
	switch mode {
	case "uniform", "proportional":
		return mode
	case "exponential":
		return fmt.Sprintf("exponential:%g", c.GetBeta())
	}
	if b := c.GetBeta(); b > 0 {
		return fmt.Sprintf("exponential:%g", b)
	}
	return "proportional"
}

// GetBeta returns the saturation parameter or 0 when unset.
func (c *EngineConfig) GetBeta() float64 {
	if c.Beta == nil {
		return 0
	}
	return *c.Beta
}

// GetActiveMarkers returns the explicit active subset, or nil for all.
func (c *EngineConfig) GetActiveMarkers() []string {
	if len(c.ActiveMarkers) == 0 {
		return nil
	}
	return append([]string(nil), c.ActiveMarkers...)
}

// GetWeightDB returns the SQLite weight database path, or "" when disabled.
func (c *EngineConfig) GetWeightDB() string {
	if c.WeightDB == nil {
		return ""
	}
	return *c.WeightDB
}

// GetInfoFile returns the JSON info file path, or "" when disabled.
func (c *EngineConfig) GetInfoFile() string {
	if c.InfoFile == nil {
		return ""
	}
	return *c.InfoFile
}

// Merge copies every field set in o over c.
func (c *EngineConfig) Merge(o *EngineConfig) {
	if o == nil {
		return
	}
	if o.Project != nil {
		c.Project = ptrString(*o.Project)
	}
	if o.FrameRate != nil {
		c.FrameRate = ptrInt(*o.FrameRate)
	}
	if o.TargetFPS != nil {
		c.TargetFPS = ptrInt(*o.TargetFPS)
	}
	if o.GestureLength != nil {
		c.GestureLength = ptrInt(*o.GestureLength)
	}
	if o.Normalize != nil {
		v := *o.Normalize
		c.Normalize = &v
	}
	if o.Weighting != nil {
		c.Weighting = ptrString(*o.Weighting)
	}
	if o.Beta != nil {
		v := *o.Beta
		c.Beta = &v
	}
	if o.ActiveMarkers != nil {
		c.ActiveMarkers = append([]string(nil), o.ActiveMarkers...)
	}
	if o.WeightDB != nil {
		c.WeightDB = ptrString(*o.WeightDB)
	}
	if o.InfoFile != nil {
		c.InfoFile = ptrString(*o.InfoFile)
	}
}
