package smt

import (
	"testing"
)

func TestAdd(t *testing.T) {
	sym1 := newBVSymNode("a", 32)
	sym2 := newBVSymNode("b", 32)

	children := make([]*BVExprPtr, 0)
	children = append(children, wrapBV(sym1))
	children = append(children, wrapBV(sym2))
	children = append(children, wrapBV(newBVConstNode(42, 32)))
	e, err := newBVAddNode(children)
	if err != nil {
		t.Error(err)
		return
	}

	if e.String() != "a + b + 0x2a" {
		t.Error("invalid expression")
		return
	}
}

func TestArithmetic(t *testing.T) {
	sym1 := newBVSymNode("a", 32)
	sym2 := newBVSymNode("b", 32)

	cc1 := make([]*BVExprPtr, 0)
	cc1 = append(cc1, wrapBV(sym1))
	cc1 = append(cc1, wrapBV(sym2))
	cc1 = append(cc1, wrapBV(newBVConstNode(42, 32)))
	e1, err := newBVMulNode(cc1)
	if err != nil {
		t.Error(err)
		return
	}

	cc2 := make([]*BVExprPtr, 0)
	cc2 = append(cc2, wrapBV(e1))
	cc2 = append(cc2, wrapBV(newBVConstNode(12, 32)))
	e2, err := newBVAddNode(cc2)
	if err != nil {
		t.Error(err)
		return
	}

	cc3 := make([]*BVExprPtr, 0)
	cc3 = append(cc3, wrapBV(newBVConstNode(0xfff00fff, 32)))
	cc3 = append(cc3, wrapBV(e2))
	e3, err := newBVAndNode(cc3)
	if err != nil {
		t.Error(err)
		return
	}

	cc4 := make([]*BVExprPtr, 0)
	cc4 = append(cc4, wrapBV(e3))
	cc4 = append(cc4, wrapBV(newBVConstNode(15, 32)))
	e4, err := newBVOrNode(cc4)
	if err != nil {
		t.Error(err)
		return
	}

	if e4.String() != "(0xfff00fff & ((a * b * 0x2a) + 0xc)) | 0xf" {
		t.Error("invalid expression")
		return
	}
}
