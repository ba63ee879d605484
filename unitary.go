package qprep

import (
	"github.com/fumin/tensor"
)

const (
	// orthoTol is the orthonormality tolerance, scaled to float32 precision.
	orthoTol = 1e-5
	// completionTol is the residual norm below which a candidate basis
	// vector is considered dependent on the already accepted columns.
	completionTol = 1e-3
)

// CompleteUnitary extends the isometry v of shape (rows, cols), rows >= cols,
// to the square unitary u, keeping the nonzero columns of v exactly at their
// positions. Zero columns of v, as left behind by bond padding, are permitted
// and filled like the missing columns: the circuit never selects them as
// inputs. The filled columns are the Gram-Schmidt completion of the standard
// basis against v, so the result is deterministic.
// Returns NumericalError if the nonzero columns of v are not orthonormal
// within tolerance, since such input cannot be completed to a unitary.
func CompleteUnitary(u, v *tensor.Dense, bufs [2]*tensor.Dense) error {
	shape := v.Shape()
	if len(shape) != 2 || shape[0] < shape[1] {
		return shapeErrorf("%#v", shape)
	}
	rows, cols := shape[0], shape[1]

	// The Gram matrix of an isometry is the identity, up to zero columns.
	g := tensor.Product(bufs[0], v.Conj(), v, [][2]int{{0, 0}})
	zero := make([]bool, cols)
	for i := range zero {
		zero[i] = abs(g.At(i, i)) <= orthoTol
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < cols; j++ {
			var want complex64
			if i == j && !zero[i] {
				want = 1
			}
			if abs(g.At(i, j)-want) > orthoTol {
				return numericalErrorf("gram %d %d %v", i, j, g.At(i, j))
			}
		}
	}

	u.Reset(rows, rows)
	filled := make([]int, 0, rows)
	empty := make([]int, 0, rows)
	for j := 0; j < cols; j++ {
		if zero[j] {
			empty = append(empty, j)
			continue
		}
		for i := 0; i < rows; i++ {
			u.SetAt([]int{i, j}, v.At(i, j))
		}
		filled = append(filled, j)
	}
	if len(filled) == 0 {
		return numericalErrorf("zero isometry")
	}
	for j := cols; j < rows; j++ {
		empty = append(empty, j)
	}

	// Orthogonalize standard basis vectors against the accepted columns
	// until the basis is complete.
	w := make([]complex64, rows)
	for e := 0; e < rows && len(empty) > 0; e++ {
		for i := range w {
			w[i] = 0
		}
		w[e] = 1
		// Project twice for stability.
		for range 2 {
			for _, j := range filled {
				var ip complex64
				for i := 0; i < rows; i++ {
					ip += conj(u.At(i, j)) * w[i]
				}
				for i := 0; i < rows; i++ {
					w[i] -= ip * u.At(i, j)
				}
			}
		}

		n := norm(w)
		if n < completionTol {
			continue
		}
		j := empty[0]
		empty = empty[1:]
		for i := 0; i < rows; i++ {
			u.SetAt([]int{i, j}, w[i]/complex(n, 0))
		}
		filled = append(filled, j)
	}
	if len(empty) > 0 {
		return numericalErrorf("%d %d", rows-len(empty), rows)
	}
	return nil
}

// SiteUnitary builds the unitary of one site tensor of shape (chi, d, chi).
// The tensor is unfolded into a (d*chi)×chi matrix whose columns are indexed
// by the left bond and whose rows are indexed jointly by (physical, right
// bond) with the physical index in the high bits, then completed to a
// unitary. The column index of the result is likewise (physical-in, bond-in),
// so the first chi columns are the unfolded isometry itself.
func SiteUnitary(u, site *tensor.Dense, bufs [2]*tensor.Dense) error {
	shape := site.Shape()
	if len(shape) != 3 || shape[mpsLeftAxis] != shape[mpsRightAxis] {
		return shapeErrorf("%#v", shape)
	}
	chi, d := shape[mpsLeftAxis], shape[mpsUpAxis]

	m := resetCopy(bufs[1], site.Transpose(mpsUpAxis, mpsRightAxis, mpsLeftAxis)).Reshape(d*chi, chi)
	return CompleteUnitary(u, m, bufs)
}

// BoundaryUnitary builds the chi×chi unitary that rotates the all-zeros bond
// register into the normalized phi superposition: its first column is
// phi divided by its norm. Returns NumericalError on a zero vector.
func BoundaryUnitary(u, phi *tensor.Dense, bufs [2]*tensor.Dense) error {
	shape := phi.Shape()
	if len(shape) != 1 {
		return dimensionErrorf("%#v", shape)
	}
	chi := shape[0]

	v := make([]complex64, chi)
	for i := range v {
		v[i] = phi.At(i)
	}
	n := norm(v)
	if n < epsilon {
		return numericalErrorf("zero boundary vector")
	}

	col := bufs[1].Reset(chi, 1)
	for i := range v {
		col.SetAt([]int{i, 0}, v[i]/complex(n, 0))
	}
	return CompleteUnitary(u, col, bufs)
}
