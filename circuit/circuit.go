// Package circuit provides a minimal quantum circuit representation and a
// dense statevector simulator.
//
// Qubits are numbered little-endian: qubit q contributes bit q of a basis
// state index.
package circuit

import (
	"github.com/fumin/tensor"
	"github.com/pkg/errors"
)

// A Register is a named group of qubits.
type Register struct {
	Name   string
	Qubits []int
}

// An Operation applies a unitary to a subset of qubits.
// Bit j of the operation's local basis index lives on Qubits[j].
type Operation struct {
	U      *tensor.Dense
	Qubits []int
}

// A Circuit is an ordered sequence of operations over allocated registers.
// It is not safe for concurrent mutation and should be treated as immutable
// once handed to an executor.
type Circuit struct {
	numQubits int
	regs      []Register
	ops       []Operation
}

func New() *Circuit {
	return &Circuit{}
}

// AddRegister allocates size fresh qubits under the given name.
func (c *Circuit) AddRegister(name string, size int) Register {
	r := Register{Name: name}
	for i := 0; i < size; i++ {
		r.Qubits = append(r.Qubits, c.numQubits+i)
	}
	c.numQubits += size
	c.regs = append(c.regs, r)
	return r
}

// NumQubits returns the total number of allocated qubits.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Registers returns the allocated registers in allocation order.
func (c *Circuit) Registers() []Register { return c.regs }

// Operations returns the operations in application order.
func (c *Circuit) Operations() []Operation { return c.ops }

// Append adds an operation applying u to the given qubits.
// u must be square of dimension 2^len(qubits), and the qubits must be
// distinct and allocated.
func (c *Circuit) Append(u *tensor.Dense, qubits []int) error {
	shape := u.Shape()
	if len(shape) != 2 || shape[0] != shape[1] {
		return errors.Errorf("%#v", shape)
	}
	if shape[0] != 1<<len(qubits) {
		return errors.Errorf("%d %d", shape[0], len(qubits))
	}
	seen := make(map[int]bool, len(qubits))
	for _, q := range qubits {
		if q < 0 || q >= c.numQubits || seen[q] {
			return errors.Errorf("qubit %d of %d", q, c.numQubits)
		}
		seen[q] = true
	}

	op := Operation{U: u, Qubits: make([]int, len(qubits))}
	copy(op.Qubits, qubits)
	c.ops = append(c.ops, op)
	return nil
}
