package smt

import "fmt"

// SortKind identifies the value space a Term inhabits. The concrete
// backend in this package only ever produces SortBool and SortBV
// terms: every end-to-end scenario in the property-directed engines
// built on top of this package (k-induction, IC3, CEGAR) is stated
// over boolean and fixed-width bit-vector state, so SortInt/SortArray
// are named for completeness with the wider logical-kernel data model
// but are not backed by a constructor here.
type SortKind int

const (
	SortBool SortKind = iota
	SortBV
	SortInt
	SortArray
)

// Sort is the structural, hashable tag of a Term: BOOL, BV(width), or
// (named but unconstructed) INT/ARRAY. Two Sorts are equal iff their
// Kind and Width match; Sort carries no pointer identity.
type Sort struct {
	Kind  SortKind
	Width uint
}

func (s Sort) String() string {
	switch s.Kind {
	case SortBool:
		return "Bool"
	case SortBV:
		return fmt.Sprintf("(_ BitVec %d)", s.Width)
	case SortInt:
		return "Int"
	case SortArray:
		return "Array"
	default:
		return "?"
	}
}

func BoolSort() Sort       { return Sort{Kind: SortBool} }
func BVSort(width uint) Sort { return Sort{Kind: SortBV, Width: width} }

// ExprPtr is the unifying handle over the two concrete term families
// this package hash-conses (BVExprPtr, BoolExprPtr). It is the "Term"
// of the logical kernel: immutable, hash-consed, pointer-identity-
// comparable via Id(), with a structural Sort.
type ExprPtr interface {
	String() string
	Id() uintptr
	Kind() Kind
	Sort() Sort

	getInternal() termNode
}

func (bv *BVExprPtr) Sort() Sort { return BVSort(bv.Size()) }

func (bv *BVExprPtr) getInternal() termNode { return bv.e }

func (e *BoolExprPtr) Sort() Sort { return BoolSort() }

func (e *BoolExprPtr) getInternal() termNode { return e.e }
