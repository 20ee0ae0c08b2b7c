// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"errors"
	"fmt"

	"cogentcore.org/webgpudemo/gpu/driver"
)

var (
	// ErrNoInstance is returned when the GPU API instance cannot be created.
	ErrNoInstance = errors.New("gpu: could not create instance")

	// ErrNoSurface is returned when the window surface cannot be created.
	ErrNoSurface = errors.New("gpu: could not create surface")

	// ErrAdapterUnavailable is returned when no suitable adapter is found.
	ErrAdapterUnavailable = errors.New("gpu: adapter unavailable")

	// ErrDeviceUnavailable is returned when the adapter cannot provide a device.
	ErrDeviceUnavailable = errors.New("gpu: device unavailable")

	// ErrRequestTimeout is returned when an adapter or device request
	// does not complete in time.
	ErrRequestTimeout = errors.New("gpu: request timed out")

	// ErrSurfaceTexture is returned when the swapchain provides no
	// texture to render the frame into.
	ErrSurfaceTexture = errors.New("gpu: no surface texture")

	// ErrDeviceReleased is returned when using a released device.
	ErrDeviceReleased = errors.New("gpu: device released")
)

// RequestError is the error for a failed adapter or device request.
// It wraps one of [ErrAdapterUnavailable], [ErrDeviceUnavailable]
// or [ErrRequestTimeout].
type RequestError struct {
	// Op is the requested object: adapter or device.
	Op string

	// Status is the status reported by the driver.
	Status driver.RequestStatus

	// Message is the message reported by the driver.
	Message string

	// Err is the sentinel error this error wraps.
	Err error
}

func (e *RequestError) Error() string {
	if errors.Is(e.Err, ErrRequestTimeout) {
		return fmt.Sprintf("gpu: %s request timed out: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("gpu: %s request failed (%s): %s", e.Op, e.Status, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }
