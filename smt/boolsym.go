package smt

import (
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// KindBoolSym extends the kind space of term.go with a first-class
// boolean symbolic constant. The hash-consed term DAG otherwise only
// produces booleans from comparisons/bool-connectives over bit-vectors;
// the transition-system layer needs BOOL-sorted state and input
// variables in their own right (spec.md scenarios S3/S4), so this
// mirrors bvSymNode for the boolean family instead of forcing every
// boolean state variable to be encoded as a BV(1).
const KindBoolSym Kind = 35

type boolSymNode struct {
	name string
}

func newBoolSymNode(name string) *boolSymNode {
	return &boolSymNode{name: name}
}

func (b *boolSymNode) String() string {
	return b.name
}

func (b *boolSymNode) subexprs() []termNode {
	return make([]termNode, 0)
}

func (b *boolSymNode) kind() Kind {
	return KindBoolSym
}

func (b *boolSymNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(b.name))
	return h.Sum64()
}

func (b *boolSymNode) deepEq(other boolNode) bool {
	if other.kind() != KindBoolSym {
		return false
	}
	return other.(*boolSymNode).name == b.name
}

func (b *boolSymNode) shallowEq(other boolNode) bool {
	return b.deepEq(other)
}

func (b *boolSymNode) isLeaf() bool {
	return true
}

func (b *boolSymNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

// BoolS creates (or reuses, via hash-consing) a named boolean symbol.
func (eb *ExprBuilder) BoolS(name string) *BoolExprPtr {
	return eb.getOrCreateBool(newBoolSymNode(name))
}
