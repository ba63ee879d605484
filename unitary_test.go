package qprep

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fumin/tensor"
)

func TestCompleteUnitary(t *testing.T) {
	t.Parallel()
	tests := []struct {
		rows int
		cols int
	}{
		{rows: 2, cols: 1},
		{rows: 4, cols: 2},
		{rows: 8, cols: 4},
		{rows: 16, cols: 8},
		{rows: 7, cols: 3},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%dx%d", test.rows, test.cols), func(t *testing.T) {
			t.Parallel()
			bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
			v := tensor.Zeros(1)
			tensor.QR(v, randTensor(test.rows, test.cols), bufs)

			u := tensor.Zeros(1)
			if err := CompleteUnitary(u, v, bufs); err != nil {
				t.Fatalf("%+v", err)
			}

			// The isometry columns are preserved exactly.
			for i := 0; i < test.rows; i++ {
				for j := 0; j < test.cols; j++ {
					if u.At(i, j) != v.At(i, j) {
						t.Fatalf("%d %d: %v %v", i, j, u.At(i, j), v.At(i, j))
					}
				}
			}

			checkUnitary(t, u)

			// The completion is deterministic.
			u2 := tensor.Zeros(1)
			if err := CompleteUnitary(u2, v, bufs); err != nil {
				t.Fatalf("%+v", err)
			}
			for i := 0; i < test.rows; i++ {
				for j := 0; j < test.rows; j++ {
					if u.At(i, j) != u2.At(i, j) {
						t.Fatalf("%d %d: %v %v", i, j, u.At(i, j), u2.At(i, j))
					}
				}
			}
		})
	}
}

func TestCompleteUnitaryNotIsometric(t *testing.T) {
	t.Parallel()
	v := tensor.T2([][]complex64{
		{1, 0},
		{1, 1},
	})
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	err := CompleteUnitary(tensor.Zeros(1), v, bufs)
	var numErr *NumericalError
	if !errors.As(err, &numErr) {
		t.Fatalf("%+v", err)
	}
}

func TestCompleteUnitaryZeroColumn(t *testing.T) {
	t.Parallel()
	// A zero column, as left behind by bond padding, is filled from the
	// completion while the nonzero columns are kept exactly.
	v := tensor.T2([][]complex64{
		{invSqrt2, 0},
		{0, 0},
		{0, 0},
		{invSqrt2, 0},
	})
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	u := tensor.Zeros(1)
	if err := CompleteUnitary(u, v, bufs); err != nil {
		t.Fatalf("%+v", err)
	}
	for i := range 4 {
		if u.At(i, 0) != v.At(i, 0) {
			t.Fatalf("%d: %v %v", i, u.At(i, 0), v.At(i, 0))
		}
	}
	checkUnitary(t, u)

	// An all-zero matrix is still rejected.
	err := CompleteUnitary(u, tensor.Zeros(4, 2), bufs)
	var numErr *NumericalError
	if !errors.As(err, &numErr) {
		t.Fatalf("%+v", err)
	}
}

func TestSiteUnitary(t *testing.T) {
	t.Parallel()
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}

	u := tensor.Zeros(1)
	if err := SiteUnitary(u, ghzSite(), bufs); err != nil {
		t.Fatalf("%+v", err)
	}
	// Column l maps the bond value l to (physical, bond) = (l, l).
	if u.At(0, 0) != 1 || u.At(3, 1) != 1 {
		t.Fatalf("%v %v", u.At(0, 0), u.At(3, 1))
	}
	checkUnitary(t, u)

	// A zero tensor is not isometric.
	err := SiteUnitary(u, tensor.Zeros(2, 2, 2), bufs)
	var numErr *NumericalError
	if !errors.As(err, &numErr) {
		t.Fatalf("%+v", err)
	}
}

func TestBoundaryUnitary(t *testing.T) {
	t.Parallel()
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}

	u := tensor.Zeros(1)
	if err := BoundaryUnitary(u, vec(1, 1), bufs); err != nil {
		t.Fatalf("%+v", err)
	}
	for i := range 2 {
		if abs(u.At(i, 0)-invSqrt2) > 1e-6 {
			t.Fatalf("%d: %v", i, u.At(i, 0))
		}
	}
	checkUnitary(t, u)

	// An unnormalized basis vector stays a basis vector.
	if err := BoundaryUnitary(u, vec(0, 0, 3, 0), bufs); err != nil {
		t.Fatalf("%+v", err)
	}
	if u.At(2, 0) != 1 {
		t.Fatalf("%v", u.At(2, 0))
	}
	checkUnitary(t, u)

	err := BoundaryUnitary(u, vec(0, 0), bufs)
	var numErr *NumericalError
	if !errors.As(err, &numErr) {
		t.Fatalf("%+v", err)
	}
}

func checkUnitary(t *testing.T, u *tensor.Dense) {
	t.Helper()
	n := u.Shape()[0]
	g := tensor.Product(tensor.Zeros(1), u.Conj(), u, [][2]int{{0, 0}})
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var want complex64
			if i == j {
				want = 1
			}
			if abs(g.At(i, j)-want) > 1e-5 {
				t.Fatalf("%d %d: %v", i, j, g.At(i, j))
			}
		}
	}
}
