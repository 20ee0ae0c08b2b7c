// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package shaders provides the WGSL shaders used to render meshes.
// All shaders share the vertex stage and bind group layout
// declared in common.wgsl.
package shaders

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/gogpu/naga"
)

//go:embed *.wgsl
var FS embed.FS

const (
	// Unlit shades with the base color and emissive textures only.
	Unlit = "unlit"

	// PBR is metallic-roughness physically based shading.
	PBR = "pbr"
)

// ErrUnknownShader is returned for a shader name that has no source.
var ErrUnknownShader = errors.New("shaders: unknown shader")

// Names returns the names of all shaders with entry points.
func Names() []string {
	return []string{PBR, Unlit}
}

// Source returns the WGSL source of the named shader,
// with #include statements expanded.
func Source(name string) (string, error) {
	b, err := fs.ReadFile(FS, name+".wgsl")
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownShader, name)
	}
	return IncludeFS(FS, "", string(b)), nil
}

// Validate compiles the named shader, returning any WGSL error.
func Validate(name string) error {
	src, err := Source(name)
	if err != nil {
		return err
	}
	return ValidateSource(name, src)
}

// ValidateSource compiles the given WGSL source to SPIR-V, so that
// shader errors are found without a GPU.
func ValidateSource(name, src string) error {
	if _, err := naga.Compile(src); err != nil {
		return fmt.Errorf("shaders: %s: %w", name, err)
	}
	return nil
}

// ValidateAll validates all shaders, joining their errors.
func ValidateAll() error {
	var errs []error
	for _, nm := range Names() {
		errs = append(errs, Validate(nm))
	}
	return errors.Join(errs...)
}
