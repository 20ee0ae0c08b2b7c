// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package render

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"cogentcore.org/webgpudemo/gpu"
	"cogentcore.org/webgpudemo/gpu/driver/drivertest"
	"cogentcore.org/webgpudemo/xyz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T, opts drivertest.Options) (*Context, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New(opts)
	gd, err := gpu.NewGraphicsDevice(context.Background(), drv, &drivertest.Window{Size: image.Pt(640, 480)}, nil)
	require.NoError(t, err)
	rc := NewContext(gd, nil, nil)
	t.Cleanup(func() {
		rc.Release()
		gd.Release()
	})
	return rc, drv
}

// copyAsset copies the two primitive test asset into a temporary directory.
func copyAsset(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "xyz", "testdata", "two_prims.gltf"))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "two_prims.gltf")
	require.NoError(t, os.WriteFile(path, data, 0666))
	return path
}

func TestNewContext(t *testing.T) {
	rc, _ := newTestContext(t, drivertest.Options{})
	require.NotNil(t, rc.Camera)
	assert.InDelta(t, 640.0/480.0, rc.Camera.Aspect, 1e-6)
}

func TestOnRenderClear(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{})
	rec := drv.Rec
	rec.Reset()

	require.NoError(t, OnRender(rc))
	assert.Equal(t, 1, rc.Frames)
	assert.Empty(t, rec.Draws())
	passes := rec.Passes()
	require.Len(t, passes, 1)
	assert.Equal(t, [4]float64{0.1, 0.1, 0.15, 1}, passes[0].Clear)
	assert.True(t, passes[0].HasDepth)
	assert.Equal(t, float32(1), passes[0].ClearDepth)
	assert.Equal(t, 1, rec.Count("Submit 1"))
	assert.Equal(t, 1, rec.Count("Present"))
	assert.Empty(t, rec.Errors())
}

func TestOnRenderTriangle(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{})
	rec := drv.Rec
	md, err := xyz.NewTriangleModel(rc.Device)
	require.NoError(t, err)
	rc.Model = md

	rec.Reset()
	for range 3 {
		require.NoError(t, OnRender(rc))
	}
	assert.Equal(t, 3, rc.Frames)
	assert.Equal(t, []string{
		"DrawIndexed 3 1 0 0 0",
		"DrawIndexed 3 1 0 0 0",
		"DrawIndexed 3 1 0 0 0",
	}, rec.OpsWithPrefix("DrawIndexed"))
	for _, p := range rec.Passes() {
		assert.Equal(t, 1, p.Draws)
	}
	assert.Len(t, rec.WritesTo("triangle uniforms"), 3)
	assert.Empty(t, rec.Errors())
}

func TestOnRenderOrbit(t *testing.T) {
	rc, _ := newTestContext(t, drivertest.Options{})
	rc.Orbit = true
	rc.OrbitSpeed = 0.1
	start := rc.Camera.Position()
	require.NoError(t, OnRender(rc))
	pos := rc.Camera.Position()
	assert.NotEqual(t, start, pos)
	assert.InDelta(t, start.Len(), pos.Len(), 1e-4)
}

func TestOnRenderSurfaceTexture(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{FailSurfaceTexture: true})
	err := OnRender(rc)
	assert.ErrorIs(t, err, gpu.ErrSurfaceTexture)
	assert.Equal(t, 0, rc.Frames)
	assert.Equal(t, 1, rc.Skipped)
	assert.Equal(t, 0, drv.Rec.Count("Present"))
}

func TestOnRenderOutdatedSurface(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{})
	rec := drv.Rec
	rec.Reset()
	drv.OutdatedSurface = true

	assert.ErrorIs(t, OnRender(rc), gpu.ErrSurfaceTexture)
	assert.Equal(t, 1, rc.Skipped)
	assert.Equal(t, 1, rec.Count("CreateSwapChain 640x480"))

	require.NoError(t, OnRender(rc))
	assert.Equal(t, 0, rc.Skipped)
	assert.Equal(t, 1, rc.Frames)
	assert.Equal(t, 1, rec.Count("Present"))
	assert.Empty(t, rec.DoubleReleases())
}

func TestReload(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{})
	path := copyAsset(t)
	md := &xyz.Model{}
	require.NoError(t, md.Init(rc.Device, path))
	rc.Model = md
	rc.Watcher = &Watcher{Path: path}

	rc.Watcher.Notify()
	require.NoError(t, OnRender(rc))
	require.NotSame(t, md, rc.Model)
	assert.Empty(t, md.Meshes)
	assert.Len(t, rc.Model.Meshes, 2)

	// a broken asset keeps the current model
	current := rc.Model
	require.NoError(t, os.WriteFile(path, []byte("{"), 0666))
	rc.Watcher.Notify()
	require.NoError(t, OnRender(rc))
	assert.Same(t, current, rc.Model)
	assert.Len(t, rc.Model.Meshes, 2)
	assert.Len(t, drv.Rec.Draws(), 4)
	assert.Empty(t, drv.Rec.DoubleReleases())
}

func TestResize(t *testing.T) {
	rc, drv := newTestContext(t, drivertest.Options{})
	require.NoError(t, rc.Resize(image.Pt(1000, 500)))
	assert.Equal(t, image.Pt(1000, 500), rc.Device.Size)
	assert.InDelta(t, 2, rc.Camera.Aspect, 1e-6)
	assert.Equal(t, 1, drv.Rec.Count("CreateSwapChain 1000x500"))

	// minimized windows keep the previous surface
	require.NoError(t, rc.Resize(image.Pt(0, 0)))
	assert.Equal(t, image.Pt(1000, 500), rc.Device.Size)
	assert.InDelta(t, 2, rc.Camera.Aspect, 1e-6)
}

func TestWatcher(t *testing.T) {
	path := copyAsset(t)
	w, err := NewWatcher(path)
	require.NoError(t, err)
	defer w.Close()
	assert.False(t, w.Changed())

	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.txt"), []byte("x"), 0666))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0666))
	assert.Eventually(t, w.Changed, 5*time.Second, 10*time.Millisecond)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
