// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package webgpu

import (
	"errors"
	"testing"

	"cogentcore.org/webgpudemo/gpu/driver"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestConvert(t *testing.T) {
	assert.Equal(t, wgpu.BufferUsageCopyDst|wgpu.BufferUsageVertex, bufferUsage(driver.BufferUsageCopyDst|driver.BufferUsageVertex))
	assert.Equal(t, wgpu.TextureUsageTextureBinding|wgpu.TextureUsageCopyDst, textureUsage(driver.TextureUsageTextureBinding|driver.TextureUsageCopyDst))
	assert.Equal(t, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment, shaderStage(driver.ShaderStageVertex|driver.ShaderStageFragment))
	assert.Equal(t, wgpu.TextureFormatDepth24Plus, textureFormat(driver.TextureFormatDepth24Plus))
	assert.Equal(t, wgpu.VertexFormatFloat32x3, vertexFormat(driver.VertexFormatFloat32x3))
	assert.Equal(t, wgpu.PresentModeFifo, presentMode(driver.PresentModeFifo))
	assert.Equal(t, wgpu.CullModeNone, cullMode(driver.CullModeNone))
	assert.Equal(t, wgpu.FrontFaceCCW, frontFace(driver.FrontFaceCCW))
	assert.Equal(t, wgpu.IndexFormatUint32, indexFormat(driver.IndexFormatUint32))
	assert.Equal(t, wgpu.CompareFunctionLess, compareFunction(driver.CompareFunctionLess))
	assert.Len(t, TextureFormats, 7)
}

func TestSurfaceFormat(t *testing.T) {
	f, err := surfaceFormat(driver.TextureFormatBGRA8Unorm, []wgpu.TextureFormat{wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatBGRA8Unorm})
	assert.NoError(t, err)
	assert.Equal(t, driver.TextureFormatBGRA8Unorm, f)

	f, err = surfaceFormat(driver.TextureFormatBGRA8Unorm, []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float, wgpu.TextureFormatRGBA8Unorm})
	assert.NoError(t, err)
	assert.Equal(t, driver.TextureFormatRGBA8Unorm, f)

	_, err = surfaceFormat(driver.TextureFormatBGRA8Unorm, []wgpu.TextureFormat{wgpu.TextureFormatRGBA16Float})
	assert.Error(t, err)
}

func TestErrorSink(t *testing.T) {
	var typ driver.ErrorType
	var msg string
	es := errorSink(func(et driver.ErrorType, message string) {
		typ, msg = et, message
	})

	assert.NoError(t, es.report(nil))
	assert.Equal(t, "", msg)

	werr := &wgpu.Error{Type: wgpu.ErrorTypeValidation, Message: "bad buffer"}
	assert.Equal(t, werr, es.report(werr))
	assert.Equal(t, driver.ErrorTypeValidation, typ)
	assert.Equal(t, "bad buffer", msg)

	err := errors.New("other")
	assert.Equal(t, err, es.report(err))
	assert.Equal(t, driver.ErrorTypeUnknown, typ)
	assert.Equal(t, "other", msg)

	assert.Equal(t, err, errorSink(nil).report(err))
	assert.Equal(t, driver.ErrorTypeOutOfMemory, errorType(wgpu.ErrorTypeOutOfMemory))
	assert.Equal(t, driver.ErrorTypeUnknown, errorType(wgpu.ErrorTypeDeviceLost))
}

func TestRegistered(t *testing.T) {
	d, err := driver.Lookup(Name)
	assert.NoError(t, err)
	assert.Equal(t, Name, d.Name())
}
