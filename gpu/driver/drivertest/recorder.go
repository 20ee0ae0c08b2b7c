// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package drivertest

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// DrawCall is one recorded DrawIndexed call.
type DrawCall struct {
	Pipeline      string
	BindGroup     string
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// BufferWrite is one recorded Queue.WriteBuffer call.
type BufferWrite struct {
	Buffer string
	Offset uint64
	Data   []byte
}

// PassInfo records the attachments of a render pass.
type PassInfo struct {
	Clear      [4]float64
	ClearDepth float32
	HasDepth   bool
	Draws      int
}

// Recorder logs every call made through a [Driver], in order.
// It is safe for concurrent use.
type Recorder struct {
	mu sync.Mutex

	ops     []string
	draws   []DrawCall
	writes  []BufferWrite
	passes  []PassInfo
	errs    []string
	live    map[*object]bool
	doubles []string
}

func newRecorder() *Recorder {
	return &Recorder{live: make(map[*object]bool)}
}

func (r *Recorder) record(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (r *Recorder) fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err.Error())
	return err
}

func (r *Recorder) created(o *object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[o] = true
}

func (r *Recorder) released(o *object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := strings.TrimSpace(o.kind + " " + o.label)
	if !r.live[o] {
		r.doubles = append(r.doubles, name)
		return
	}
	delete(r.live, o)
	r.ops = append(r.ops, "Release "+name)
}

// Ops returns a copy of all recorded operations.
func (r *Recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.ops)
}

// OpsWithPrefix returns the recorded operations starting with prefix.
func (r *Recorder) OpsWithPrefix(prefix string) []string {
	var ops []string
	for _, op := range r.Ops() {
		if strings.HasPrefix(op, prefix) {
			ops = append(ops, op)
		}
	}
	return ops
}

// Count returns the number of recorded operations starting with prefix.
func (r *Recorder) Count(prefix string) int {
	return len(r.OpsWithPrefix(prefix))
}

// Index returns the position of the first operation equal to op, or -1.
func (r *Recorder) Index(op string) int {
	return slices.Index(r.Ops(), op)
}

// Draws returns the recorded draw calls.
func (r *Recorder) Draws() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.draws)
}

// Writes returns the recorded buffer writes.
func (r *Recorder) Writes() []BufferWrite {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.writes)
}

// WritesTo returns the recorded writes to the buffer with the given label.
func (r *Recorder) WritesTo(label string) []BufferWrite {
	var ws []BufferWrite
	for _, w := range r.Writes() {
		if w.Buffer == label {
			ws = append(ws, w)
		}
	}
	return ws
}

// Passes returns the recorded render passes.
func (r *Recorder) Passes() []PassInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.passes)
}

// Errors returns the validation errors raised by the fake.
func (r *Recorder) Errors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.errs)
}

// Live returns the number of created objects not yet released.
func (r *Recorder) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// LiveKinds returns the sorted kind and label of every unreleased object.
func (r *Recorder) LiveKinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ks []string
	for o := range r.live {
		ks = append(ks, strings.TrimSpace(o.kind+" "+o.label))
	}
	slices.Sort(ks)
	return ks
}

// DoubleReleases returns the objects that were released more than once.
func (r *Recorder) DoubleReleases() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.doubles)
}

// Reset clears the operation, draw, write, pass and error logs.
// Object liveness is kept.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = nil
	r.draws = nil
	r.writes = nil
	r.passes = nil
	r.errs = nil
}

// object is embedded in every fake handle.
type object struct {
	rec   *Recorder
	kind  string
	label string
}

func (o *object) init(rec *Recorder, kind, label string) {
	o.rec = rec
	o.kind = kind
	o.label = label
	rec.created(o)
}

// Label returns the label the object was created with.
func (o *object) Label() string { return o.label }

func (o *object) Release() { o.rec.released(o) }

func (r *Recorder) isLive(o *object) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.live[o]
}
