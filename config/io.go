// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Open reads the given config file into cfg, with the format
// determined by the file extension: .toml, .yaml, .yml or .json.
// Values not present in the file are left unchanged, so the
// typical usage is to open a file on top of [New].
func Open(cfg *Config, filename string) error {
	b, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".toml":
		err = toml.Unmarshal(b, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	case ".json":
		err = json.Unmarshal(b, cfg)
	default:
		return fmt.Errorf("config.Open: unsupported config file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("config.Open %s: %w", filename, err)
	}
	return nil
}

// Save writes cfg to the given file, with the format
// determined by the file extension as in [Open].
func Save(cfg *Config, filename string) error {
	var b []byte
	var err error
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".toml":
		b, err = toml.Marshal(cfg)
	case ".yaml", ".yml":
		b, err = yaml.Marshal(cfg)
	case ".json":
		b, err = json.MarshalIndent(cfg, "", "\t")
	default:
		return fmt.Errorf("config.Save: unsupported config file extension %q", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(filename, b, 0666)
}
