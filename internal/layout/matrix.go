package layout

// Matrix is a 4x4 transformation matrix in row-major order. Only the xy plane
// is used by the engine, but the full 4x4 form matches what compositing
// backends consume for per-view transforms.
//
// TransformPoint computes M*v with v a column vector, so in a product built
// with Multiply the rightmost factor applies first.
type Matrix [16]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{
		1, 0, 0, x,
		0, 1, 0, y,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Scale returns an anisotropic scale by (sx, sy).
func Scale(sx, sy float64) Matrix {
	return Matrix{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// RotateXY returns a rotation in the xy plane given the cosine and sine of
// the angle. The engine only ever rotates in 90-degree steps, so callers pass
// exact 0/1/-1 values and no trigonometry is involved.
func RotateXY(cos, sin float64) Matrix {
	return Matrix{
		cos, -sin, 0, 0,
		sin, cos, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Multiply returns m*other. Since TransformPoint applies column vectors,
// m.Multiply(other) is a transform that applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	var out Matrix
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[row*4+k] * other[k*4+col]
			}
			out[row*4+col] = sum
		}
	}
	return out
}

// TransformPoint applies the transformation to the point (x, y).
func (m Matrix) TransformPoint(x, y float64) (float64, float64) {
	tx := m[0]*x + m[1]*y + m[3]
	ty := m[4]*x + m[5]*y + m[7]
	return tx, ty
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m == Identity()
}
