package qprep_test

import (
	"fmt"
	"log"

	"github.com/fumin/tensor"

	"qprep"
	"qprep/circuit"
)

func Example() {
	// A 5-site GHZ state as a bond dimension 2 MPS: each site copies the
	// bond value onto its physical qubit.
	site := tensor.Zeros(2, 2, 2)
	site.SetAt([]int{0, 0, 0}, 1)
	site.SetAt([]int{1, 1, 1}, 1)
	phi := tensor.Zeros(2)
	phi.SetAt([]int{0}, 0.70710678)
	phi.SetAt([]int{1}, 0.70710678)
	m := qprep.MPS{PhiInitial: phi, PhiFinal: phi}
	for range 5 {
		m.Sites = append(m.Sites, site)
	}

	// Compile, simulate, and project out the bond register.
	c, _, err := qprep.BuildCircuit(m)
	if err != nil {
		log.Fatalf("%+v", err)
	}
	state := qprep.Normalize(qprep.Project(circuit.Simulate(c), m.PhiFinal, 2))

	p0 := real(state[0])*real(state[0]) + imag(state[0])*imag(state[0])
	p1 := real(state[31])*real(state[31]) + imag(state[31])*imag(state[31])
	fmt.Printf("P(00000)=%.2f P(11111)=%.2f\n", p0, p1)

	// Output:
	// P(00000)=0.50 P(11111)=0.50
}
