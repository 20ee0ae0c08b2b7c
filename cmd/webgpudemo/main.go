// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command webgpudemo opens a window and renders a cleared frame,
// a triangle or a glTF model with WebGPU.
package main

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/base/logx"
	"cogentcore.org/webgpudemo/config"
	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver"
	_ "cogentcore.org/webgpudemo/gpu/driver/webgpu"
	"cogentcore.org/webgpudemo/render"
	"cogentcore.org/webgpudemo/shaders"
	"cogentcore.org/webgpudemo/window"
	"cogentcore.org/webgpudemo/xyz"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/pflag"
)

func init() {
	// must lock main thread for gpu!
	runtime.LockOSThread()
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "webgpudemo:", err)
		os.Exit(2)
	}
	if err := run(cfg); err != nil {
		slog.Error("webgpudemo: exiting", "err", err)
		os.Exit(1)
	}
}

// parseConfig returns the config from defaults, the optional config
// file, then the command line flags, in increasing priority.
func parseConfig(args []string) (*config.Config, error) {
	cfg := config.New()
	fs := pflag.NewFlagSet("webgpudemo", pflag.ContinueOnError)
	file := fs.StringP("config", "c", "", "config file (.toml, .yaml or .json)")
	scene := fs.String("scene", "", "scene to render: clear, triangle or model")
	asset := fs.String("asset", "", "glTF asset for the model scene")
	drv := fs.String("driver", "", "GPU driver: "+strings.Join(driver.Available(), ", "))
	level := fs.String("log-level", "", "log level: debug, info, warn or error")
	veryVerbose := fs.Bool("vv", false, "log debug messages")
	verbose := fs.BoolP("verbose", "v", false, "log info messages")
	quiet := fs.BoolP("quiet", "q", false, "only log errors")
	watch := fs.Bool("watch", false, "reload the asset when it changes")
	validate := fs.Bool("validate-shaders", false, "compile all shaders before rendering")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *file != "" {
		if err := config.Open(cfg, *file); err != nil {
			return nil, err
		}
	}
	if fs.Changed("scene") {
		cfg.Scene.Kind = *scene
	}
	if fs.Changed("asset") {
		cfg.Scene.Asset = *asset
	}
	if fs.Changed("driver") {
		cfg.Render.Driver = *drv
	}
	if fs.Changed("vv") || fs.Changed("verbose") || fs.Changed("quiet") {
		cfg.Log.Level = strings.ToLower(logx.LevelFromFlags(*veryVerbose, *verbose, *quiet).String())
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = *level
	}
	if fs.Changed("watch") {
		cfg.Scene.Watch = *watch
	}
	if fs.Changed("validate-shaders") {
		cfg.Render.ValidateShaders = *validate
	}
	return cfg, cfg.Validate()
}

// deviceOptions returns the graphics device options for the config.
func deviceOptions(cfg *config.Config) (*gpu.DeviceOptions, error) {
	opts := &gpu.DeviceOptions{}
	opts.Defaults()
	pm, err := driver.ParsePresentMode(cfg.Render.PresentMode)
	if err != nil {
		return nil, err
	}
	clr, err := cfg.Render.Clear()
	if err != nil {
		return nil, err
	}
	opts.PresentMode = pm
	opts.ClearColor = driver.Color{R: clr.R, G: clr.G, B: clr.B, A: 1}
	opts.Depth = cfg.Render.Depth
	opts.RequestTimeout = time.Duration(cfg.Render.RequestTimeout)
	opts.SharePipelines = cfg.Render.SharePipelines
	return opts, nil
}

// newCamera returns the camera for the config.
func newCamera(cfg *config.Config) *xyz.Camera {
	cc := cfg.Camera
	cam := xyz.NewCamera()
	cam.FOV = cc.FOV
	cam.Near = cc.Near
	cam.Far = cc.Far
	cam.SetPosition(mgl32.Vec3(cc.Position))
	cam.LookAt(mgl32.Vec3(cc.Target), mgl32.Vec3{0, 1, 0})
	return cam
}

func run(cfg *config.Config) error {
	lv, err := logx.LevelFromString(cfg.Log.Level)
	if err != nil {
		return err
	}
	logx.UserLevel.Set(lv)
	logx.SetDefaultLogger()

	if cfg.Render.ValidateShaders {
		if err := shaders.ValidateAll(); err != nil {
			return err
		}
		slog.Info("webgpudemo: shaders valid", "shaders", shaders.Names())
	}

	drv, err := driver.Lookup(cfg.Render.Driver)
	if err != nil {
		return err
	}
	opts, err := deviceOptions(cfg)
	if err != nil {
		return err
	}

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Terminate()
	win, err := window.New(image.Pt(cfg.Window.Width, cfg.Window.Height), cfg.Window.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	gd, err := gpu.NewGraphicsDevice(context.Background(), drv, win, opts)
	if err != nil {
		return err
	}
	defer gd.Release()

	rc := render.NewContext(gd, nil, newCamera(cfg))
	defer rc.Release()
	rc.Orbit = cfg.Camera.Orbit
	rc.OrbitSpeed = cfg.Camera.OrbitSpeed
	if err := loadScene(cfg, rc); err != nil {
		return err
	}
	win.SetResizeCallback(func(size image.Point) {
		errors.Log(rc.Resize(size))
	})

	slog.Info("webgpudemo: rendering", "scene", cfg.Scene.Kind, "size", gd.Size)
	return win.Run(func() error {
		return renderFrame(rc)
	})
}

// maxSkipped is the number of consecutive frames without a surface
// texture after which rendering stops.
const maxSkipped = 60

// renderFrame renders one frame. A frame without a surface texture
// is skipped, as the surface is reconfigured for the next one,
// unless that keeps happening.
func renderFrame(rc *render.Context) error {
	err := render.OnRender(rc)
	if errors.Is(err, gpu.ErrSurfaceTexture) && rc.Skipped < maxSkipped {
		return nil
	}
	return err
}

// loadScene sets the model of the render context for the scene kind.
func loadScene(cfg *config.Config, rc *render.Context) error {
	switch cfg.Scene.Kind {
	case config.SceneClear:
		return nil
	case config.SceneTriangle:
		md, err := xyz.NewTriangleModel(rc.Device)
		if err != nil {
			return err
		}
		rc.Model = md
		return nil
	}
	path, err := cfg.AssetPath()
	if err != nil {
		return err
	}
	md := &xyz.Model{Shader: cfg.Scene.Shader}
	if err := md.Init(rc.Device, path); err != nil {
		return err
	}
	rc.Model = md
	if cfg.Scene.Watch {
		w, err := render.NewWatcher(path)
		if err != nil {
			return err
		}
		rc.Watcher = w
	}
	return nil
}
