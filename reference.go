package qprep

import (
	"github.com/fumin/tensor"
)

// phaseTol is the magnitude relative to the vector norm above which an entry
// is considered non-negligible when fixing the global phase.
const phaseTol = 1e-3

// Ordering fixes how physical indices are flattened into a statevector.
type Ordering int

const (
	// OrderFirstSiteLow places site 1 in the least significant bits,
	// matching the qubit order of circuits built by BuildCircuit.
	OrderFirstSiteLow Ordering = iota
	// OrderFirstSiteHigh is the plain row-major flattening, site 1 in the
	// most significant bits.
	OrderFirstSiteHigh
)

// ContractReference contracts an MPS exactly into its statevector:
// PhiInitial is absorbed into site 1, each intermediate result is contracted
// with the next site along the bond axis, and PhiFinal closes the chain.
// It involves no circuit and is meant for verification.
func ContractReference(m MPS, ordering Ordering) ([]complex64, error) {
	m, err := Validate(m)
	if err != nil {
		return nil, err
	}

	cur, next := tensor.Zeros(1), tensor.Zeros(1)
	f := resetCopy(cur, m.PhiInitial)
	for _, site := range m.Sites {
		// f has axes (p_1, ..., p_i, bond).
		axes := [][2]int{{len(f.Shape()) - 1, mpsLeftAxis}}
		f = tensor.Product(next, f, site, axes)
		cur, next = next, cur
	}
	f = tensor.Product(next, f, m.PhiFinal, [][2]int{{len(f.Shape()) - 1, 0}})
	cur, next = next, cur

	if ordering == OrderFirstSiteLow {
		perm := make([]int, len(f.Shape()))
		for i := range perm {
			perm[i] = len(perm) - 1 - i
		}
		f = resetCopy(next, f.Transpose(perm...))
	}

	n := 1
	for _, s := range f.Shape() {
		n *= s
	}
	out := make([]complex64, 0, n)
	for _, v := range f.All() {
		out = append(out, v)
	}
	return out, nil
}

// Normalize scales v to unit 2-norm. A zero vector is returned unchanged.
func Normalize(v []complex64) []complex64 {
	out := make([]complex64, len(v))
	n := norm(v)
	if n < epsilon {
		copy(out, v)
		return out
	}
	for i, x := range v {
		out[i] = x / complex(n, 0)
	}
	return out
}

// ExtractPhase divides v by the unit phase of its first non-negligible entry,
// making comparisons invariant under a global phase. Negligibility is judged
// relative to the norm of v, so scaling v does not change the chosen entry.
func ExtractPhase(v []complex64) []complex64 {
	out := make([]complex64, len(v))
	copy(out, v)
	threshold := norm(v) * phaseTol
	if threshold == 0 {
		return out
	}
	for _, x := range v {
		a := abs(x)
		if a <= threshold {
			continue
		}
		phase := x / complex(a, 0)
		for i := range out {
			out[i] /= phase
		}
		break
	}
	return out
}
