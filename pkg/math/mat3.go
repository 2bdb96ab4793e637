package math

// Mat3 is a 3x3 matrix in column-major order, typically a normal matrix.
type Mat3 [9]float32

// Identity3 returns a 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Column returns column i (0..2).
func (m Mat3) Column(i int) Vec3 {
	return Vec3{m[i*3], m[i*3+1], m[i*3+2]}
}

// NormalizeColumns returns a copy with each column scaled to unit length.
// Zero columns stay zero.
func (m Mat3) NormalizeColumns() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		c := m.Column(i).Normalize()
		out[i*3] = c.X
		out[i*3+1] = c.Y
		out[i*3+2] = c.Z
	}
	return out
}

// MulVec3 returns m * v.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}
