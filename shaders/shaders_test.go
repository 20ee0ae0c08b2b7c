// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shaders

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncludeFS(t *testing.T) {
	fsys := fstest.MapFS{
		"a.wgsl":     {Data: []byte("fn a() {}")},
		"lib/b.wgsl": {Data: []byte("fn b() {}\nfn c() {}")},
	}
	code := "#include \"a.wgsl\"\n#include \"b.wgsl\"\n#include \"missing.wgsl\"\n#include \"bad\nfn main() {}"
	got := IncludeFS(fsys, "lib", code)
	assert.Equal(t, strings.Join([]string{
		`// #include "a.wgsl"`,
		"fn a() {}",
		`// #include "b.wgsl"`,
		"fn b() {}",
		"fn c() {}",
		`#include "missing.wgsl"`,
		`#include "bad`,
		"fn main() {}",
	}, "\n"), got)
}

func TestSource(t *testing.T) {
	for _, nm := range Names() {
		src, err := Source(nm)
		require.NoError(t, err, nm)
		assert.Contains(t, src, "fn vs_main(", nm)
		assert.Contains(t, src, "fn fs_main(", nm)
		assert.Contains(t, src, "@group(0) @binding(6)", nm)
		for _, ln := range strings.Split(src, "\n") {
			assert.False(t, strings.HasPrefix(ln, "#include"), nm)
		}
	}
	_, err := Source("toon")
	assert.ErrorIs(t, err, ErrUnknownShader)
	assert.ErrorIs(t, Validate("toon"), ErrUnknownShader)
}

// skipUnsupported skips when the pure Go compiler lacks a feature
// the shader uses, as it does not yet cover all of WGSL.
func skipUnsupported(t *testing.T, err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
		t.Skipf("WGSL feature not supported by compiler: %v", err)
	}
}

func TestValidate(t *testing.T) {
	for _, nm := range Names() {
		t.Run(nm, func(t *testing.T) {
			err := Validate(nm)
			skipUnsupported(t, err)
			assert.NoError(t, err)
		})
	}
}

func TestValidateSourceError(t *testing.T) {
	err := ValidateSource("broken", "fn fs_main( -> {")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
