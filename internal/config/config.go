// Package config resolves cmft's run settings from a JSON config file
// layered under CLI flags, following the flags-over-file-over-defaults
// precedence used by internal/config in the wider example pack.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"

	"github.com/Carmen-Shannon/cmft/cubemap"
	"github.com/Carmen-Shannon/cmft/filter"
)

// Config holds every setting a radiance/irradiance/shcoeffs run needs.
// Fields not set in a loaded file keep their zero values until Resolve fills
// in defaults.
type Config struct {
	DstFaceSize   int     `json:"dst_face_size"`
	MipCount      int     `json:"mip_count"`
	ExcludeBase   bool    `json:"exclude_base"`
	LightingModel string  `json:"lighting_model"`
	GlossScale    float32 `json:"gloss_scale"`
	GlossBias     float32 `json:"gloss_bias"`
	EdgeFixup     string  `json:"edge_fixup"`
	Workers       int     `json:"workers"`
	UseGPU        bool    `json:"use_gpu"`
}

// Load reads a JSON config file. Fields absent from the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override a loaded config file.
type Flags struct {
	DstFaceSize   int
	MipCount      int
	ExcludeBase   bool
	LightingModel string
	GlossScale    float32
	GlossBias     float32
	EdgeFixup     string
	Workers       int
	UseGPU        bool
}

// Resolve layers flags over c, then fills any still-empty fields with
// defaults.
func (c *Config) Resolve(flags Flags) {
	if flags.DstFaceSize > 0 {
		c.DstFaceSize = flags.DstFaceSize
	}
	if flags.MipCount > 0 {
		c.MipCount = flags.MipCount
	}
	if flags.ExcludeBase {
		c.ExcludeBase = true
	}
	if flags.LightingModel != "" {
		c.LightingModel = flags.LightingModel
	}
	if flags.GlossScale != 0 {
		c.GlossScale = flags.GlossScale
	}
	if flags.GlossBias != 0 {
		c.GlossBias = flags.GlossBias
	}
	if flags.EdgeFixup != "" {
		c.EdgeFixup = flags.EdgeFixup
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.UseGPU {
		c.UseGPU = true
	}

	if c.DstFaceSize <= 0 {
		c.DstFaceSize = 256
	}
	if c.LightingModel == "" {
		c.LightingModel = "phong"
	}
	if c.GlossScale == 0 {
		c.GlossScale = 10
	}
	if c.EdgeFixup == "" {
		c.EdgeFixup = "warp"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
}

// ParseLightingModel maps a config/flag string to a filter.LightingModel.
func ParseLightingModel(s string) (filter.LightingModel, error) {
	switch s {
	case "phong":
		return filter.Phong, nil
	case "phongbrdf":
		return filter.PhongBRDF, nil
	case "blinn":
		return filter.Blinn, nil
	case "blinnbrdf":
		return filter.BlinnBRDF, nil
	default:
		return 0, fmt.Errorf("config: unknown lighting model %q", s)
	}
}

// ParseEdgeFixup maps a config/flag string to a cubemap.EdgeFixup.
func ParseEdgeFixup(s string) (cubemap.EdgeFixup, error) {
	switch s {
	case "none":
		return cubemap.FixupNone, nil
	case "warp":
		return cubemap.FixupWarp, nil
	default:
		return 0, fmt.Errorf("config: unknown edge fixup %q", s)
	}
}
