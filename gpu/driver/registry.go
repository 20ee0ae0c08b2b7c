// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package driver

import (
	"fmt"
	"slices"
	"sync"
)

var (
	registryMu sync.RWMutex
	drivers    = make(map[string]Driver)

	// priority order for [Default]; the first registered wins.
	driverPriority = []string{"webgpu"}
)

// Register registers a driver under its name, replacing any
// driver with the same name. It is typically called from init
// functions in driver packages.
func Register(d Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	drivers[d.Name()] = d
}

// Unregister removes the named driver. This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(drivers, name)
}

// Available returns the sorted names of the registered drivers.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return availableLocked()
}

// Lookup returns the named driver. An empty name returns [Default].
func Lookup(name string) (Driver, error) {
	if name == "" {
		if d := Default(); d != nil {
			return d, nil
		}
		return nil, fmt.Errorf("gpu/driver: no drivers registered")
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := drivers[name]
	if !ok {
		return nil, fmt.Errorf("gpu/driver: unknown driver %q (available: %v)", name, availableLocked())
	}
	return d, nil
}

func availableLocked() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Default returns the best available driver based on priority,
// falling back to the first registered name in sorted order.
// Returns nil if no drivers are registered.
func Default() Driver {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, name := range driverPriority {
		if d, ok := drivers[name]; ok {
			return d
		}
	}
	if names := availableLocked(); len(names) > 0 {
		return drivers[names[0]]
	}
	return nil
}
