// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config contains the configuration structs for the
// webgpudemo program, which can be loaded from TOML, YAML or
// JSON files and overridden on the command line.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"cogentcore.org/webgpudemo/base/errors"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mitchellh/go-homedir"
)

// Scene kinds select which incremental demo scene is rendered.
const (
	// SceneClear renders a cleared window with no geometry.
	SceneClear = "clear"

	// SceneTriangle renders a single hardcoded indexed triangle.
	SceneTriangle = "triangle"

	// SceneModel renders a glTF model with PBR material textures.
	SceneModel = "model"
)

// Config is the main config struct that contains all of the
// configuration options for the demo.
type Config struct {

	// Window configures the window the demo renders into.
	Window WindowConfig

	// Render configures the GPU device and frame rendering.
	Render RenderConfig

	// Camera configures the initial camera and its animation.
	Camera CameraConfig

	// Scene selects what is rendered.
	Scene SceneConfig

	// Log configures logging.
	Log LogConfig
}

// WindowConfig has the window settings.
type WindowConfig struct {

	// Width of the window in screen units.
	Width int `default:"1600"`

	// Height of the window in screen units.
	Height int `default:"900"`

	// Title of the window.
	Title string `default:"Hackweek WebGPU test"`
}

// RenderConfig has the GPU and frame settings.
type RenderConfig struct {

	// Driver is the name of the registered GPU driver to use.
	Driver string `default:"webgpu"`

	// ClearColor is the background color as a hex string.
	ClearColor string `default:"#1a1a26"`

	// Depth enables the depth attachment.
	Depth bool `default:"true"`

	// PresentMode is one of fifo, mailbox or immediate.
	PresentMode string `default:"fifo"`

	// RequestTimeout bounds the adapter and device requests.
	RequestTimeout Duration `default:"5s"`

	// SharePipelines shares render pipelines between meshes with
	// identical pipeline state. When off, every mesh creates its own.
	SharePipelines bool `default:"true"`

	// ValidateShaders compiles all embedded shaders on startup,
	// independent of the GPU driver, and fails early on errors.
	ValidateShaders bool
}

// CameraConfig has the camera settings.
type CameraConfig struct {

	// FOV is the vertical field of view in degrees.
	FOV float32 `default:"45"`

	// Near is the near clipping plane distance.
	Near float32 `default:"0.1"`

	// Far is the far clipping plane distance.
	Far float32 `default:"100"`

	// Position is the initial camera position.
	Position [3]float32 `default:"[0, 0, 3]"`

	// Target is the point the camera looks at.
	Target [3]float32 `default:"[0, 0, 0]"`

	// Orbit animates the camera around the target.
	Orbit bool `default:"true"`

	// OrbitSpeed is the orbit angle increment per frame, in radians.
	OrbitSpeed float32 `default:"0.01"`
}

// SceneConfig selects the scene.
type SceneConfig struct {

	// Kind is one of clear, triangle or model.
	Kind string `default:"model"`

	// Asset is the glTF file (.gltf or .glb) for the model scene.
	// A leading ~ is expanded to the home directory.
	Asset string `default:"assets/DamagedHelmet.glb"`

	// Shader is the shader used for model meshes: pbr or unlit.
	Shader string `default:"pbr"`

	// Watch reloads the asset when the file changes on disk.
	Watch bool
}

// LogConfig has the logging settings.
type LogConfig struct {

	// Level is one of debug, info, warn or error.
	Level string `default:"info"`
}

// New returns a new [Config] with default values.
func New() *Config {
	cfg := &Config{}
	errors.Log(SetFromDefaults(cfg))
	return cfg
}

// Validate returns an error describing every invalid setting, or nil.
func (cfg *Config) Validate() error {
	var errs []error
	if cfg.Window.Width <= 0 || cfg.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", cfg.Window.Width, cfg.Window.Height))
	}
	switch cfg.Scene.Kind {
	case SceneClear, SceneTriangle:
	case SceneModel:
		if cfg.Scene.Asset == "" {
			errs = append(errs, errors.New("model scene needs an asset"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown scene kind %q", cfg.Scene.Kind))
	}
	switch cfg.Scene.Shader {
	case "pbr", "unlit":
	default:
		errs = append(errs, fmt.Errorf("unknown shader %q", cfg.Scene.Shader))
	}
	switch strings.ToLower(cfg.Render.PresentMode) {
	case "fifo", "mailbox", "immediate":
	default:
		errs = append(errs, fmt.Errorf("unknown present mode %q", cfg.Render.PresentMode))
	}
	if _, err := cfg.Render.Clear(); err != nil {
		errs = append(errs, err)
	}
	if cfg.Render.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if cfg.Camera.FOV <= 0 || cfg.Camera.FOV >= 180 {
		errs = append(errs, fmt.Errorf("camera FOV must be in (0, 180), got %g", cfg.Camera.FOV))
	}
	if cfg.Camera.Near <= 0 || cfg.Camera.Near >= cfg.Camera.Far {
		errs = append(errs, fmt.Errorf("camera planes must satisfy 0 < near < far, got %g, %g", cfg.Camera.Near, cfg.Camera.Far))
	}
	if cfg.Camera.Position == cfg.Camera.Target {
		errs = append(errs, fmt.Errorf("camera position and target must differ, both are %v", cfg.Camera.Position))
	}
	return errors.Join(errs...)
}

// AssetPath returns the asset file with a leading ~ expanded.
func (cfg *Config) AssetPath() (string, error) {
	p, err := homedir.Expand(cfg.Scene.Asset)
	if err != nil {
		return "", err
	}
	return filepath.Clean(p), nil
}

// Clear returns the parsed clear color.
func (rc *RenderConfig) Clear() (colorful.Color, error) {
	c, err := colorful.Hex(rc.ClearColor)
	if err != nil {
		return c, fmt.Errorf("invalid clear color %q: %w", rc.ClearColor, err)
	}
	return c, nil
}

// Duration is a [time.Duration] that is written and read
// in text form, such as 5s or 250ms, in all config formats.
type Duration time.Duration

func (d Duration) String() string { return time.Duration(d).String() }

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
