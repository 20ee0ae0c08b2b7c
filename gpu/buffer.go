// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"unsafe"

	"cogentcore.org/webgpudemo/base/errors"
	"cogentcore.org/webgpudemo/gpu/driver"
)

// Buffer is a GPU buffer holding Count elements of data,
// created by one of the Make*Buffer functions.
type Buffer struct {
	// Name is the debug label of the buffer.
	Name string

	// Usage of the buffer, always including CopyDst.
	Usage driver.BufferUsage

	// Count is the number of elements in the buffer.
	Count int

	// Size is the size of the data in bytes.
	Size int

	// AllocSize is the allocated size, Size rounded up to 4 bytes.
	AllocSize int

	buffer driver.Buffer
}

// Handle returns the driver buffer, nil once released.
func (bf *Buffer) Handle() driver.Buffer {
	return bf.buffer
}

// NewBuffer allocates a buffer able to hold size bytes of data.
// size must be positive.
func NewBuffer(gd *GraphicsDevice, name string, usage driver.BufferUsage, size, count int) (*Buffer, error) {
	if gd == nil || gd.Device == nil {
		return nil, ErrDeviceReleased
	}
	if size <= 0 {
		return nil, fmt.Errorf("gpu.NewBuffer %q: no data", name)
	}
	bf := &Buffer{Name: name, Usage: usage | driver.BufferUsageCopyDst, Count: count, Size: size}
	bf.AllocSize = MemSizeAlign(size, 4)
	buf, err := gd.Device.CreateBuffer(&driver.BufferDescriptor{
		Label: name,
		Size:  uint64(bf.AllocSize),
		Usage: bf.Usage,
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	bf.buffer = buf
	return bf, nil
}

// Write uploads data to the start of the buffer. Data whose length is
// not a multiple of 4 is zero padded, as required for queue writes.
func (bf *Buffer) Write(gd *GraphicsDevice, data []byte) error {
	if bf.buffer == nil {
		return fmt.Errorf("gpu.Buffer.Write %q: buffer released", bf.Name)
	}
	if len(data) > bf.AllocSize {
		return fmt.Errorf("gpu.Buffer.Write %q: %d bytes exceeds size %d", bf.Name, len(data), bf.AllocSize)
	}
	if len(data)%4 != 0 {
		padded := make([]byte, MemSizeAlign(len(data), 4))
		copy(padded, data)
		data = padded
	}
	return errors.Log(gd.Queue.WriteBuffer(bf.buffer, 0, data))
}

// Release releases the buffer. It is safe to call more than once.
func (bf *Buffer) Release() {
	if bf.buffer != nil {
		bf.buffer.Release()
		bf.buffer = nil
	}
}

// MakeBuffer creates a buffer with the given usage and uploads data
// to it. It is an error to make a buffer from no data.
func MakeBuffer[E any](gd *GraphicsDevice, name string, usage driver.BufferUsage, data []E) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("gpu.MakeBuffer %q: no data", name)
	}
	b := ToBytes(data)
	bf, err := NewBuffer(gd, name, usage, len(b), len(data))
	if err != nil {
		return nil, err
	}
	if err := bf.Write(gd, b); err != nil {
		bf.Release()
		return nil, err
	}
	return bf, nil
}

// MakeVertexBuffer creates a vertex buffer holding data.
func MakeVertexBuffer[E any](gd *GraphicsDevice, name string, data []E) (*Buffer, error) {
	return MakeBuffer(gd, name, driver.BufferUsageVertex, data)
}

// MakeIndexBuffer creates an index buffer holding 32 bit indices.
func MakeIndexBuffer(gd *GraphicsDevice, name string, data []uint32) (*Buffer, error) {
	return MakeBuffer(gd, name, driver.BufferUsageIndex, data)
}

// MakeUniformBuffer creates a uniform buffer holding data.
func MakeUniformBuffer[E any](gd *GraphicsDevice, name string, data []E) (*Buffer, error) {
	return MakeBuffer(gd, name, driver.BufferUsageUniform, data)
}

// WriteBuffer uploads data to the start of the buffer.
func WriteBuffer[E any](gd *GraphicsDevice, bf *Buffer, data []E) error {
	return bf.Write(gd, ToBytes(data))
}

// ToBytes returns the memory of the slice as bytes, without copying.
// E must be a fixed size type without pointers.
func ToBytes[E any](data []E) []byte {
	if len(data) == 0 {
		return nil
	}
	var e E
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(data))), len(data)*int(unsafe.Sizeof(e)))
}

// MemSizeAlign returns the size aligned according to align byte increments
// e.g., if align = 16 and size = 12, it returns 16
func MemSizeAlign(size, align int) int {
	if size%align == 0 {
		return size
	}
	nb := size / align
	return (nb + 1) * align
}
