// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package math32

// Matrix4 is a 4x4 matrix stored in row-major order,
// so element (r, c) is at index 4*r+c.
// Transforms are applied to column vectors: v' = M * v,
// which places the translation in elements 3, 7 and 11.
type Matrix4 [16]float32

// NewMatrix4 creates and returns a pointer to a new identity Matrix4.
func NewMatrix4() *Matrix4 {

	var m Matrix4
	return m.Identity()
}

// Identity sets this matrix to the identity matrix.
// Returns the pointer to this updated matrix.
func (m *Matrix4) Identity() *Matrix4 {

	m.Set(
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	)
	return m
}

// Set sets all the elements of this matrix in row-major order.
// Returns the pointer to this updated matrix.
func (m *Matrix4) Set(n11, n12, n13, n14, n21, n22, n23, n24, n31, n32, n33, n34, n41, n42, n43, n44 float32) *Matrix4 {

	m[0] = n11
	m[1] = n12
	m[2] = n13
	m[3] = n14
	m[4] = n21
	m[5] = n22
	m[6] = n23
	m[7] = n24
	m[8] = n31
	m[9] = n32
	m[10] = n33
	m[11] = n34
	m[12] = n41
	m[13] = n42
	m[14] = n43
	m[15] = n44
	return m
}

// FromSlice sets this matrix from a slice of 16 row-major elements.
// Returns the pointer to this updated matrix.
func (m *Matrix4) FromSlice(s []float32) *Matrix4 {

	copy(m[:], s)
	return m
}

// FromColumnMajor sets this matrix from a slice of 16 column-major
// elements, transposing them into row-major order.
// Returns the pointer to this updated matrix.
func (m *Matrix4) FromColumnMajor(s []float32) *Matrix4 {

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			m[4*r+c] = s[4*c+r]
		}
	}
	return m
}

// Transpose transposes this matrix.
// Returns the pointer to this updated matrix.
func (m *Matrix4) Transpose() *Matrix4 {

	m[1], m[4] = m[4], m[1]
	m[2], m[8] = m[8], m[2]
	m[3], m[12] = m[12], m[3]
	m[6], m[9] = m[9], m[6]
	m[7], m[13] = m[13], m[7]
	m[11], m[14] = m[14], m[11]
	return m
}

// Multiply sets this matrix to the product of this matrix and other.
// Returns the pointer to this updated matrix.
func (m *Matrix4) Multiply(other *Matrix4) *Matrix4 {

	var out Matrix4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[4*r+k] * other[4*k+c]
			}
			out[4*r+c] = sum
		}
	}
	*m = out
	return m
}

// Compose sets this matrix to the transform specified by the position,
// quaternion and per-axis scale.
// Returns the pointer to this updated matrix.
func (m *Matrix4) Compose(position *Vector3, quaternion *Quaternion, scale *Vector3) *Matrix4 {

	x := quaternion.X
	y := quaternion.Y
	z := quaternion.Z
	w := quaternion.W
	x2 := x + x
	y2 := y + y
	z2 := z + z
	xx := x * x2
	xy := x * y2
	xz := x * z2
	yy := y * y2
	yz := y * z2
	zz := z * z2
	wx := w * x2
	wy := w * y2
	wz := w * z2

	m.Set(
		(1-(yy+zz))*scale.X, (xy-wz)*scale.Y, (xz+wy)*scale.Z, position.X,
		(xy+wz)*scale.X, (1-(xx+zz))*scale.Y, (yz-wx)*scale.Z, position.Y,
		(xz-wy)*scale.X, (yz+wx)*scale.Y, (1-(xx+yy))*scale.Z, position.Z,
		0, 0, 0, 1,
	)
	return m
}

// Decompose decomposes this matrix into its position, quaternion and
// per-axis scale components.
func (m *Matrix4) Decompose(position *Vector3, quaternion *Quaternion, scale *Vector3) {

	sx := NewVector3(m[0], m[4], m[8]).Length()
	sy := NewVector3(m[1], m[5], m[9]).Length()
	sz := NewVector3(m[2], m[6], m[10]).Length()

	// Negative determinant flips one axis
	if m.Determinant() < 0 {
		sx = -sx
	}

	position.Set(m[3], m[7], m[11])
	scale.Set(sx, sy, sz)

	if sx == 0 || sy == 0 || sz == 0 {
		quaternion.SetIdentity()
		return
	}

	var rot Matrix4
	rot.Identity()
	rot[0] = m[0] / sx
	rot[4] = m[4] / sx
	rot[8] = m[8] / sx
	rot[1] = m[1] / sy
	rot[5] = m[5] / sy
	rot[9] = m[9] / sy
	rot[2] = m[2] / sz
	rot[6] = m[6] / sz
	rot[10] = m[10] / sz
	quaternion.SetFromRotationMatrix(&rot)
}

// Determinant returns the determinant of this matrix.
func (m *Matrix4) Determinant() float32 {

	n11 := m[0]
	n12 := m[1]
	n13 := m[2]
	n14 := m[3]
	n21 := m[4]
	n22 := m[5]
	n23 := m[6]
	n24 := m[7]
	n31 := m[8]
	n32 := m[9]
	n33 := m[10]
	n34 := m[11]
	n41 := m[12]
	n42 := m[13]
	n43 := m[14]
	n44 := m[15]

	return n41*(n14*n23*n32-n13*n24*n32-n14*n22*n33+n12*n24*n33+n13*n22*n34-n12*n23*n34) +
		n42*(n11*n23*n34-n11*n24*n33+n14*n21*n33-n13*n21*n34+n13*n24*n31-n14*n23*n31) +
		n43*(n11*n24*n32-n11*n22*n34-n14*n21*n32+n12*n21*n34+n14*n22*n31-n12*n24*n31) +
		n44*(-n13*n22*n31-n11*n23*n32+n11*n22*n33+n13*n21*n32-n12*n21*n33+n12*n23*n31)
}

// Equals returns if this matrix is equal to other.
func (m *Matrix4) Equals(other *Matrix4) bool {

	return *m == *other
}
