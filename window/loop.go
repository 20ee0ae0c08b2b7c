// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package window provides the desktop window the demo renders into,
// and the loop that drives frames.
package window

import (
	"time"
)

// FrameRate is the default rate at which [RunLoop] renders frames.
var FrameRate = 60

// RunLoop calls poll then frame on every tick of the given frame
// rate (frames per second, [FrameRate] if <= 0), until poll returns
// false or frame returns an error, which is returned.
// It must be called on the main thread.
func RunLoop(fps int, poll func() bool, frame func() error) error {
	if fps <= 0 {
		fps = FrameRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for range ticker.C {
		if !poll() {
			return nil
		}
		if err := frame(); err != nil {
			return err
		}
	}
	return nil
}
