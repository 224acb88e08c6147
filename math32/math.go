// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package math32 implements basic math functions which operate
// directly on float32 numbers without casting and contains
// types of common entities used in 3D asset processing such as
// vectors, matrices and quaternions.
package math32

import (
	"math"
)

const Pi = math.Pi

// Abs returns the absolute value of v.
func Abs(v float32) float32 {

	return float32(math.Abs(float64(v)))
}

// Sqrt returns the square root of v.
func Sqrt(v float32) float32 {

	return float32(math.Sqrt(float64(v)))
}

// Max returns the larger of a or b.
func Max(a, b float32) float32 {

	if a > b {
		return a
	}
	return b
}

// Min returns the smaller of a or b.
func Min(a, b float32) float32 {

	if a < b {
		return a
	}
	return b
}
