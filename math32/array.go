// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

// ArrayF32 is a slice of float32 with additional convenience methods.
type ArrayF32 []float32

// NewArrayF32 creates a returns a new array of floats
// with the specified initial size and capacity.
func NewArrayF32(size, capacity int) ArrayF32 {

	return make([]float32, size, capacity)
}

// Size returns the size of the array.
func (a *ArrayF32) Size() int {

	return len(*a)
}

// Append appends any number of values to the array.
func (a *ArrayF32) Append(v ...float32) {

	*a = append(*a, v...)
}

// AppendVector2 appends a two component vector to the array.
func (a *ArrayF32) AppendVector2(u, v float32) {

	*a = append(*a, u, v)
}

// AppendVector3 appends the components of the specified vector to the array.
func (a *ArrayF32) AppendVector3(v *Vector3) {

	*a = append(*a, v.X, v.Y, v.Z)
}

// GetVector3 stores in the specified vector the values
// from the array starting at the specified pos.
func (a ArrayF32) GetVector3(pos int, v *Vector3) {

	v.X = a[pos]
	v.Y = a[pos+1]
	v.Z = a[pos+2]
}

// ArrayU32 is a slice of uint32 with additional convenience methods.
type ArrayU32 []uint32

// NewArrayU32 creates a returns a new array of uint32
// with the specified initial size and capacity.
func NewArrayU32(size, capacity int) ArrayU32 {

	return make([]uint32, size, capacity)
}

// Size returns the size of the array.
func (a *ArrayU32) Size() int {

	return len(*a)
}

// Append appends any number of values to the array.
func (a *ArrayU32) Append(v ...uint32) {

	*a = append(*a, v...)
}
