// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedDriver string

func (d namedDriver) Name() string                      { return string(d) }
func (d namedDriver) CreateInstance() (Instance, error) { return nil, errors.New("no instance") }

func TestRegistry(t *testing.T) {
	Register(namedDriver("zz-test"))
	Register(namedDriver("aa-test"))
	defer Unregister("zz-test")
	defer Unregister("aa-test")

	assert.Contains(t, Available(), "zz-test")
	assert.Contains(t, Available(), "aa-test")

	d, err := Lookup("zz-test")
	require.NoError(t, err)
	assert.Equal(t, "zz-test", d.Name())

	_, err = Lookup("missing")
	assert.ErrorContains(t, err, "missing")

	def, err := Lookup("")
	require.NoError(t, err)
	assert.NotNil(t, def)

	Unregister("zz-test")
	_, err = Lookup("zz-test")
	assert.Error(t, err)
}

func TestEnumStrings(t *testing.T) {
	assert.Equal(t, "CopyDst|Vertex", (BufferUsageCopyDst | BufferUsageVertex).String())
	assert.Equal(t, "None", BufferUsage(0).String())
	assert.Equal(t, "TextureBinding|RenderAttachment", (TextureUsageTextureBinding | TextureUsageRenderAttachment).String())
	assert.Equal(t, "BGRA8Unorm", TextureFormatBGRA8Unorm.String())
	assert.Equal(t, "Unavailable", RequestStatusUnavailable.String())
	assert.Equal(t, "Validation", ErrorTypeValidation.String())
	assert.Equal(t, "Float32x3", VertexFormatFloat32x3.String())
	assert.Equal(t, "Texture", BindingTexture.String())
}

func TestSizes(t *testing.T) {
	assert.Equal(t, uint64(12), VertexFormatFloat32x3.Size())
	assert.Equal(t, uint64(16), VertexFormatFloat32x4.Size())
	assert.Equal(t, 4, IndexFormatUint32.Size())
	assert.Equal(t, 2, IndexFormatUint16.Size())
	assert.True(t, TextureFormatDepth24Plus.IsDepth())
	assert.False(t, TextureFormatRGBA8Unorm.IsDepth())
	assert.Equal(t, 4, TextureFormatRGBA8UnormSrgb.BytesPerPixel())
}

func TestParsePresentMode(t *testing.T) {
	pm, err := ParsePresentMode("mailbox")
	assert.NoError(t, err)
	assert.Equal(t, PresentModeMailbox, pm)
	pm, err = ParsePresentMode("")
	assert.NoError(t, err)
	assert.Equal(t, PresentModeFifo, pm)
	_, err = ParsePresentMode("vsync")
	assert.Error(t, err)
}
