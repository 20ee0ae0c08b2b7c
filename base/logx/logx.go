// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package logx sets up the structured logger used by the demo:
// a [slog.TextHandler] with colored level names and a user-selectable
// verbosity level.
package logx

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// UserLevel is the verbosity [slog.Level] that the user has selected for
// what logging messages should be shown. Messages at levels at or above
// this level will be shown. The default is [slog.LevelInfo], or
// [slog.LevelDebug] with the debug build tag and [slog.LevelWarn] with
// the release build tag.
var UserLevel = new(slog.LevelVar)

func init() {
	UserLevel.Set(defaultUserLevel)
}

// LevelFromString returns the [slog.Level] for the given name,
// which is one of debug, info, warn or error (case insensitive).
// An empty string returns the default user level.
func LevelFromString(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return defaultUserLevel, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return defaultUserLevel, fmt.Errorf("logx: unknown log level %q", s)
}

// LevelFromFlags returns the [slog.Level] object corresponding to the given
// user flag options. The flags correspond to the following values:
//   - vv: [slog.LevelDebug]
//   - v: [slog.LevelInfo]
//   - q: [slog.LevelError]
//   - (default: [slog.LevelWarn])
//
// The flags are evaluated in that order, so, for example, if both
// vv and q are specified, it will still return [slog.LevelDebug].
func LevelFromFlags(vv, v, q bool) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// LevelColor returns the terminal color used for the given level.
func LevelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "#ff5f5f"
	case level >= slog.LevelWarn:
		return "#ffaf00"
	case level >= slog.LevelInfo:
		return "#5fafff"
	default:
		return "#8a8a8a"
	}
}

// NewHandler returns a text [slog.Handler] writing to w, filtering
// at the given level. Level names are colored when w is a terminal
// that supports it, and plain otherwise. Timestamps are omitted.
func NewHandler(w io.Writer, level slog.Leveler) slog.Handler {
	out := termenv.NewOutput(w)
	color := out.Profile != termenv.Ascii
	return slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}
			switch a.Key {
			case slog.TimeKey:
				return slog.Attr{}
			case slog.LevelKey:
				lv, ok := a.Value.Any().(slog.Level)
				if !ok || !color {
					return a
				}
				a.Value = slog.StringValue(out.String(lv.String()).Foreground(out.Color(LevelColor(lv))).String())
			}
			return a
		},
	})
}

// SetDefaultLogger sets the default [slog] logger to one writing
// to [os.Stderr] at the current [UserLevel].
func SetDefaultLogger() {
	slog.SetDefault(slog.New(NewHandler(os.Stderr, UserLevel)))
}
