// Package qprep compiles matrix product states into quantum circuits.
//
// A matrix product state whose site tensors are isometric is prepared on a
// quantum register by a staircase of unitaries acting on a small ancilla
// register that carries the bond index through the chain.
//
// References:
//   - Sequential Generation of Entangled Multiqubit States, C. Schön et al., Phys. Rev. Lett. 95, 110503
//   - The density-matrix renormalization group in the age of matrix product states, Ulrich Schollwock
package qprep

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"slices"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"

	"qprep/circuit"
)

const (
	// mpsLeftAxis is the axis of the left bond index a_{l-1} in Figure 6, Ulrich Schollwock.
	mpsLeftAxis  = 0
	mpsUpAxis    = 1
	mpsRightAxis = 2

	// Machine precision.
	epsilon = 0x1p-23
)

// An MPS is a matrix product state together with its boundary vectors.
// Site tensors have axes (left bond, physical, right bond).
// The represented state is phiInitial^T A_1^{p_1} ... A_N^{p_N} phiFinal,
// summed over the physical values p_i.
type MPS struct {
	Sites      []*tensor.Dense
	PhiInitial *tensor.Dense
	PhiFinal   *tensor.Dense
}

// Validate checks an MPS and pads all bond axes and boundary vectors with
// zeros up to a uniform power-of-two bond dimension. Zero padding leaves
// every contraction value unchanged. Validating an already uniform MPS
// returns it as is.
func Validate(m MPS) (MPS, error) {
	if len(m.Sites) == 0 {
		return MPS{}, shapeErrorf("no sites")
	}
	if m.PhiInitial == nil || m.PhiFinal == nil {
		return MPS{}, dimensionErrorf("missing boundary vector")
	}

	d := 0
	chi := 1
	for i, s := range m.Sites {
		shape := s.Shape()
		if len(shape) != 3 {
			return MPS{}, shapeErrorf("site %d: %#v", i, shape)
		}
		if i == 0 {
			d = shape[mpsUpAxis]
			if d < 1 || d&(d-1) != 0 {
				return MPS{}, shapeErrorf("physical dimension %d", d)
			}
		}
		if shape[mpsUpAxis] != d {
			return MPS{}, shapeErrorf("site %d: %d %d", i, shape[mpsUpAxis], d)
		}
		chi = max(chi, shape[mpsLeftAxis], shape[mpsRightAxis])
	}
	chi = nextPow2(chi)

	pi, pf := m.PhiInitial.Shape(), m.PhiFinal.Shape()
	if len(pi) != 1 || pi[0] != m.Sites[0].Shape()[mpsLeftAxis] {
		return MPS{}, dimensionErrorf("phi initial %#v %d", pi, m.Sites[0].Shape()[mpsLeftAxis])
	}
	last := m.Sites[len(m.Sites)-1]
	if len(pf) != 1 || pf[0] != last.Shape()[mpsRightAxis] {
		return MPS{}, dimensionErrorf("phi final %#v %d", pf, last.Shape()[mpsRightAxis])
	}

	uniform := true
	for _, s := range m.Sites {
		shape := s.Shape()
		if shape[mpsLeftAxis] != chi || shape[mpsRightAxis] != chi {
			uniform = false
			break
		}
	}
	if uniform {
		return m, nil
	}

	padded := MPS{Sites: make([]*tensor.Dense, 0, len(m.Sites))}
	for _, s := range m.Sites {
		padded.Sites = append(padded.Sites, pad(s, chi, d, chi))
	}
	padded.PhiInitial = pad(m.PhiInitial, chi)
	padded.PhiFinal = pad(m.PhiFinal, chi)
	return padded, nil
}

// BuildCircuit compiles an MPS into a circuit over a bond register of
// log2(chi) qubits and a physical register of N*log2(d) qubits.
// The bond register is first rotated into the normalized PhiInitial
// superposition, then each site unitary is applied to
// (bond register, site i qubits) in strict site order, the bond register
// carrying the running bond index. The physical register handle is returned
// for measurement or statevector extraction; recovering the target state
// from a simulated statevector requires a final Project against PhiFinal.
// The input is validated internally, but the padded MPS is not returned:
// callers whose input needs padding should run Validate themselves and keep
// its result, since Project needs the padded PhiFinal and bond dimension.
func BuildCircuit(m MPS) (*circuit.Circuit, circuit.Register, error) {
	m, err := Validate(m)
	if err != nil {
		return nil, circuit.Register{}, err
	}

	chi := m.Sites[0].Shape()[mpsLeftAxis]
	d := m.Sites[0].Shape()[mpsUpAxis]
	nBond, nPhys := log2(chi), log2(d)

	c := circuit.New()
	bond := c.AddRegister("bond", nBond)
	phys := c.AddRegister("phys", len(m.Sites)*nPhys)

	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	if chi > 1 {
		prep := tensor.Zeros(1)
		if err := BoundaryUnitary(prep, m.PhiInitial, bufs); err != nil {
			return nil, circuit.Register{}, err
		}
		if err := c.Append(prep, bond.Qubits); err != nil {
			return nil, circuit.Register{}, errors.Wrap(err, "")
		}
	}

	for i, site := range m.Sites {
		u := tensor.Zeros(1)
		if err := SiteUnitary(u, site, bufs); err != nil {
			return nil, circuit.Register{}, errors.Wrap(err, fmt.Sprintf("site %d", i))
		}
		qubits := append(slices.Clone(bond.Qubits), phys.Qubits[i*nPhys:(i+1)*nPhys]...)
		if err := c.Append(u, qubits); err != nil {
			return nil, circuit.Register{}, errors.Wrap(err, fmt.Sprintf("site %d", i))
		}
	}

	return c, phys, nil
}

// Project contracts the bond axis of a full statevector with the final
// boundary vector, recovering the physical statevector. The bond index
// occupies the low bits of the state index, so state is reshaped to
// (2^N, chi) and right-multiplied by phiFinal.
func Project(state []complex64, phiFinal *tensor.Dense, chi int) []complex64 {
	out := make([]complex64, len(state)/chi)
	for p := range out {
		var v complex64
		for r := 0; r < chi; r++ {
			v += state[p*chi+r] * phiFinal.At(r)
		}
		out[p] = v
	}
	return out
}

// RandMPS creates a random MPS with isometric site tensors and random
// boundary vectors. Each site is the unfolding of the Q factor of a random
// (chi*d)×chi matrix.
func RandMPS(numSites, d, chi int) MPS {
	bufs := [2]*tensor.Dense{tensor.Zeros(1), tensor.Zeros(1)}
	m := MPS{Sites: make([]*tensor.Dense, 0, numSites)}
	for range numSites {
		q := tensor.Zeros(1)
		tensor.QR(q, randTensor(chi*d, chi), bufs)

		site := tensor.Zeros(chi, d, chi)
		for l := 0; l < chi; l++ {
			for p := 0; p < d; p++ {
				for r := 0; r < chi; r++ {
					site.SetAt([]int{l, p, r}, q.At(p*chi+r, l))
				}
			}
		}
		m.Sites = append(m.Sites, site)
	}
	m.PhiInitial = randTensor(chi)
	m.PhiFinal = randTensor(chi)
	return m
}

// pad copies a into the zero tensor of the given shape.
func pad(a *tensor.Dense, shape ...int) *tensor.Dense {
	b := tensor.Zeros(shape...)
	for ijk, v := range a.All() {
		b.SetAt(ijk, v)
	}
	return b
}

func nextPow2(x int) int {
	p := 1
	for p < x {
		p <<= 1
	}
	return p
}

func log2(x int) int {
	n := 0
	for 1<<n < x {
		n++
	}
	return n
}

func resetCopy(dst, src *tensor.Dense) *tensor.Dense {
	shape := src.Shape()
	zeroDigit := make([]int, len(shape))
	dst.Reset(shape...).Set(zeroDigit, src)
	return dst
}

func abs(x complex64) float32 {
	return float32(cmplx.Abs(complex128(x)))
}

func conj(x complex64) complex64 {
	return complex(real(x), -imag(x))
}

func norm(v []complex64) float32 {
	var s float64
	for _, x := range v {
		s += float64(real(x))*float64(real(x)) + float64(imag(x))*float64(imag(x))
	}
	return float32(math.Sqrt(s))
}

func randTensor(shape ...int) *tensor.Dense {
	t := tensor.Zeros(shape...)
	for ijk := range t.All() {
		v := complex(rand.Float32()*2-1, rand.Float32()*2-1)
		t.SetAt(ijk, v)
	}
	return t
}
