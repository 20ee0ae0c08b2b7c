// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"context"
	"sync"

	"cogentcore.org/webgpudemo/gpu/driver"
)

// RequestAdapter requests an adapter from the instance and blocks until
// the driver callback delivers it, or ctx is done. The callback may run
// on any goroutine, including synchronously inside the request.
func RequestAdapter(ctx context.Context, inst driver.Instance, opts *driver.AdapterOptions) (driver.Adapter, error) {
	return await(ctx, "adapter", ErrAdapterUnavailable, func(done func(driver.RequestStatus, driver.Adapter, string)) {
		inst.RequestAdapter(opts, done)
	})
}

// RequestDevice requests a device from the adapter, with the
// same blocking semantics as [RequestAdapter].
func RequestDevice(ctx context.Context, adapter driver.Adapter, desc *driver.DeviceDescriptor) (driver.Device, error) {
	return await(ctx, "device", ErrDeviceUnavailable, func(done func(driver.RequestStatus, driver.Device, string)) {
		adapter.RequestDevice(desc, done)
	})
}

type releaser interface {
	Release()
}

// await turns a callback based request into a blocking call.
// Handles that are not returned, as delivered after await has
// given up, with a failure status or by a second callback,
// are released.
func await[T releaser](ctx context.Context, op string, failed error, start func(done func(driver.RequestStatus, T, string))) (T, error) {
	type result struct {
		status  driver.RequestStatus
		handle  T
		message string
	}
	var zero T
	var mu sync.Mutex
	abandoned := false
	ch := make(chan result, 1)
	start(func(status driver.RequestStatus, handle T, message string) {
		mu.Lock()
		defer mu.Unlock()
		if abandoned {
			if any(handle) != nil {
				handle.Release()
			}
			return
		}
		select {
		case ch <- result{status, handle, message}:
		default: // callback called twice
			if any(handle) != nil {
				handle.Release()
			}
		}
	})
	select {
	case r := <-ch:
		if r.status != driver.RequestStatusSuccess || any(r.handle) == nil {
			if any(r.handle) != nil {
				r.handle.Release()
			}
			return zero, &RequestError{Op: op, Status: r.status, Message: r.message, Err: failed}
		}
		return r.handle, nil
	case <-ctx.Done():
		mu.Lock()
		abandoned = true
		mu.Unlock()
		select {
		case r := <-ch: // delivered while timing out
			if any(r.handle) != nil {
				r.handle.Release()
			}
		default:
		}
		return zero, &RequestError{Op: op, Status: driver.RequestStatusError, Message: ctx.Err().Error(), Err: ErrRequestTimeout}
	}
}
