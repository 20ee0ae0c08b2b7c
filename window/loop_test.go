// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunLoop(t *testing.T) {
	polls, frames := 0, 0
	err := RunLoop(1000, func() bool {
		polls++
		return polls <= 5
	}, func() error {
		frames++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 6, polls)
	assert.Equal(t, 5, frames)
}

func TestRunLoopError(t *testing.T) {
	errFrame := errors.New("frame failed")
	frames := 0
	err := RunLoop(1000, func() bool { return true }, func() error {
		frames++
		if frames == 3 {
			return errFrame
		}
		return nil
	})
	assert.ErrorIs(t, err, errFrame)
	assert.Equal(t, 3, frames)
}
