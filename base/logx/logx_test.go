// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logx

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFromString(t *testing.T) {
	lv, err := LevelFromString("debug")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lv)

	lv, err = LevelFromString(" WARN ")
	assert.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lv)

	lv, err = LevelFromString("")
	assert.NoError(t, err)
	assert.Equal(t, defaultUserLevel, lv)

	_, err = LevelFromString("loud")
	assert.Error(t, err)
}

func TestLevelFromFlags(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromFlags(true, false, true))
	assert.Equal(t, slog.LevelInfo, LevelFromFlags(false, true, false))
	assert.Equal(t, slog.LevelError, LevelFromFlags(false, false, true))
	assert.Equal(t, slog.LevelWarn, LevelFromFlags(false, false, false))
}

func TestHandler(t *testing.T) {
	var buf bytes.Buffer
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	log := slog.New(NewHandler(&buf, lv))

	log.Debug("hidden")
	log.Info("device created", "width", 1600)
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "width=1600")
	assert.NotContains(t, out, "time=")

	buf.Reset()
	lv.Set(slog.LevelDebug)
	log.Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}
