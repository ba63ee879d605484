package circuit

import (
	"math/rand/v2"
	"strconv"
	"strings"
)

// Simulate applies the circuit to the all-zeros state and returns the
// resulting statevector.
func Simulate(c *Circuit) []complex64 {
	state := make([]complex64, 1<<c.numQubits)
	state[0] = 1
	for _, op := range c.ops {
		apply(state, op)
	}
	return state
}

func apply(state []complex64, op Operation) {
	dim := 1 << len(op.Qubits)
	mask := 0
	for _, q := range op.Qubits {
		mask |= 1 << q
	}

	amp := make([]complex64, dim)
	for base := range state {
		// Visit each orbit once, at its member with all target bits clear.
		if base&mask != 0 {
			continue
		}

		for x := 0; x < dim; x++ {
			amp[x] = state[base|scatter(x, op.Qubits)]
		}
		for x := 0; x < dim; x++ {
			var v complex64
			for y := 0; y < dim; y++ {
				v += op.U.At(x, y) * amp[y]
			}
			state[base|scatter(x, op.Qubits)] = v
		}
	}
}

// scatter places bit j of x on qubit qubits[j].
func scatter(x int, qubits []int) int {
	idx := 0
	for j, q := range qubits {
		if x&(1<<j) != 0 {
			idx |= 1 << q
		}
	}
	return idx
}

// Sample measures a register of a statevector in the computational basis,
// returning bitstring counts. Bitstrings are most significant qubit first,
// so the register's first qubit is the last character.
func Sample(state []complex64, reg Register, shots int, rng *rand.Rand) map[string]int {
	probs := make([]float64, 1<<len(reg.Qubits))
	for i, a := range state {
		p := float64(real(a))*float64(real(a)) + float64(imag(a))*float64(imag(a))
		if p == 0 {
			continue
		}
		v := 0
		for j, q := range reg.Qubits {
			if i&(1<<q) != 0 {
				v |= 1 << j
			}
		}
		probs[v] += p
	}

	counts := make(map[string]int)
	for range shots {
		r := rng.Float64()
		acc := 0.0
		v := len(probs) - 1
		for i, p := range probs {
			acc += p
			if r < acc {
				v = i
				break
			}
		}
		counts[bitstring(v, len(reg.Qubits))]++
	}
	return counts
}

func bitstring(v, n int) string {
	s := strconv.FormatInt(int64(v), 2)
	if len(s) < n {
		s = strings.Repeat("0", n-len(s)) + s
	}
	return s
}
