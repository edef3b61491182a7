package smt

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Kind discriminates the hash-consed node types making up a term DAG;
// every termNode reports one via kind().
type Kind int

const (
	KindSym     Kind = 1
	KindConst   Kind = 2
	KindExtract Kind = 3
	KindConcat  Kind = 4
	KindZExt    Kind = 5
	KindSExt    Kind = 6
	KindITE     Kind = 7

	KindNot  Kind = 8
	KindNeg  Kind = 9
	KindShl  Kind = 10
	KindLshr Kind = 11
	KindAshr Kind = 12
	KindAnd  Kind = 13
	KindOr   Kind = 14
	KindXor  Kind = 15
	KindAdd  Kind = 16
	KindMul  Kind = 17
	KindSdiv Kind = 18
	KindUdiv Kind = 19
	KindSrem Kind = 20
	KindUrem Kind = 21

	KindUlt Kind = 22
	KindUle Kind = 23
	KindUgt Kind = 24
	KindUge Kind = 25
	KindSlt Kind = 26
	KindSle Kind = 27
	KindSgt Kind = 28
	KindSge Kind = 29
	KindEq  Kind = 30

	KindBoolConst Kind = 31
	KindBoolNot   Kind = 32
	KindBoolAnd   Kind = 33
	KindBoolOr    Kind = 34
)

/*
 *   Public Interface
 */

type BVExprPtr struct {
	e bvNode
}

func (bv *BVExprPtr) IsConst() bool {
	return bv.e.kind() == KindConst
}

func (bv *BVExprPtr) GetConst() (*BVConst, error) {
	if bv.e.kind() != KindConst {
		return nil, fmt.Errorf("not a constant")
	}
	c := bv.e.(*bvConstNode)
	return c.Value.Copy(), nil
}

func (bv *BVExprPtr) IsZero() bool {
	if !bv.IsConst() {
		return false
	}
	c, _ := bv.GetConst()
	return c.IsZero()
}

func (bv *BVExprPtr) IsOne() bool {
	if !bv.IsConst() {
		return false
	}
	c, _ := bv.GetConst()
	return c.IsOne()
}

func (bv *BVExprPtr) HasAllBitsSet() bool {
	if !bv.IsConst() {
		return false
	}
	c, _ := bv.GetConst()
	return c.HasAllBitsSet()
}

func (bv *BVExprPtr) IsOppositeOf(o *BVExprPtr) bool {
	if bv.Kind() == KindNeg {
		negBv := bv.e.(*bvUnOpNode)
		if o.Id() == negBv.child.Id() {
			return true
		}
	}
	if o.Kind() == KindNeg {
		negO := o.e.(*bvUnOpNode)
		return bv.Id() == negO.child.Id()
	}
	return false
}

func (bv *BVExprPtr) Size() uint {
	return bv.e.size()
}

func (bv *BVExprPtr) String() string {
	return bv.e.String()
}

func (bv *BVExprPtr) Id() uintptr {
	return bv.e.rawPtr()
}

func (bv *BVExprPtr) Kind() Kind {
	return bv.e.kind()
}

type BoolExprPtr struct {
	e boolNode
}

func (e *BoolExprPtr) IsConst() bool {
	return e.e.kind() == KindBoolConst
}

func (e *BoolExprPtr) GetConst() (bool, error) {
	if e.e.kind() != KindBoolConst {
		return false, fmt.Errorf("not a constant")
	}
	c := e.e.(*boolConstNode)
	return c.Value.Value, nil
}

func (e *BoolExprPtr) String() string {
	return e.e.String()
}

func (e *BoolExprPtr) Id() uintptr {
	return e.e.rawPtr()
}

func (e *BoolExprPtr) Kind() Kind {
	return e.e.kind()
}

/*
 *   Private Interface
 */

type termNode interface {
	String() string

	kind() Kind
	hash() uint64
	isLeaf() bool
	rawPtr() uintptr
	subexprs() []termNode
}

type bvNode interface {
	termNode

	size() uint
	deepEq(bvNode) bool
	shallowEq(bvNode) bool
}

type boolNode interface {
	termNode

	deepEq(boolNode) bool
	shallowEq(boolNode) bool
}

/*
 *  KindConst
 */

type bvConstNode struct {
	Value BVConst
}

func newBVConstNode(value int64, size uint) *bvConstNode {
	return &bvConstNode{Value: *MakeBVConst(value, size)}
}

func newBVConstNodeFromConst(c BVConst) *bvConstNode {
	return &bvConstNode{Value: c}
}

func (bvv *bvConstNode) String() string {
	return fmt.Sprintf("0x%x", bvv.Value.value)
}

func (bvv *bvConstNode) size() uint {
	return bvv.Value.Size
}

func (bvv *bvConstNode) subexprs() []termNode {
	return make([]termNode, 0)
}

func (bvv *bvConstNode) kind() Kind {
	return KindConst
}

func (bvv *bvConstNode) hash() uint64 {
	if bvv.Value.Size > 64 {
		cpy := bvv.Value.Copy()
		cpy.Truncate(63, 0)
		return cpy.AsULong()
	}
	return bvv.Value.AsULong()
}

func (bvv *bvConstNode) deepEq(other bvNode) bool {
	if other.kind() != KindConst {
		return false
	}
	obvv := other.(*bvConstNode)
	res, err := bvv.Value.Eq(&obvv.Value)
	if err != nil || !res.Value {
		return false
	}
	return true
}

func (bvv *bvConstNode) shallowEq(other bvNode) bool {
	return bvv.deepEq(other)
}

func (bvv *bvConstNode) isLeaf() bool {
	return true
}

func (bvv *bvConstNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(bvv))
}

/*
 *  KindBoolConst
 */

type boolConstNode struct {
	Value BoolConst
}

func newBoolConstNode(value bool) *boolConstNode {
	if value {
		return &boolConstNode{Value: BoolTrue()}
	}
	return &boolConstNode{Value: BoolFalse()}
}

func (b *boolConstNode) String() string {
	return b.Value.String()
}

func (b *boolConstNode) subexprs() []termNode {
	return make([]termNode, 0)
}

func (b *boolConstNode) kind() Kind {
	return KindBoolConst
}

func (b *boolConstNode) hash() uint64 {
	if b.Value.Value {
		return 1
	}
	return 0
}

func (b *boolConstNode) deepEq(other boolNode) bool {
	if other.kind() != KindBoolConst {
		return false
	}
	ob := other.(*boolConstNode)
	return ob.Value.Value == b.Value.Value
}

func (b *boolConstNode) shallowEq(other boolNode) bool {
	return b.deepEq(other)
}

func (b *boolConstNode) isLeaf() bool {
	return true
}

func (b *boolConstNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(b))
}

/*
 *  KindSym
 */

type bvSymNode struct {
	name string
	sz   uint
}

func newBVSymNode(name string, size uint) *bvSymNode {
	return &bvSymNode{name: name, sz: size}
}

func (bvs *bvSymNode) String() string {
	return bvs.name
}

func (bvs *bvSymNode) size() uint {
	return bvs.sz
}

func (bvs *bvSymNode) subexprs() []termNode {
	return make([]termNode, 0)
}

func (bvs *bvSymNode) kind() Kind {
	return KindSym
}

func (bvs *bvSymNode) hash() uint64 {
	h := xxhash.New()
	n, err := h.Write([]byte(bvs.name))
	if err != nil || n != len(bvs.name) {
		panic(err)
	}
	return h.Sum64()
}

func (bvs *bvSymNode) deepEq(other bvNode) bool {
	if other.kind() != KindSym {
		return false
	}
	obvs := other.(*bvSymNode)
	return obvs.sz == bvs.sz && obvs.name == bvs.name
}

func (bvs *bvSymNode) shallowEq(other bvNode) bool {
	return bvs.deepEq(other)
}

func (bvs *bvSymNode) isLeaf() bool {
	return true
}

func (bvs *bvSymNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(bvs))
}

/*
 * KindAnd, KindOr, KindXor, KindAdd, KindMul, KindSdiv, KindUdiv, KindSrem, KindUrem, KindShl, KindLshr, KindAshr
 */

type bvNaryOpNode struct {
	knd      Kind
	symbol   string
	children []*BVExprPtr
}

func newBVNaryOpNode(children []*BVExprPtr, kind Kind, symbol string) (*bvNaryOpNode, error) {
	if len(children) < 2 {
		return nil, fmt.Errorf("newBVNaryOpNode(): not enough children")
	}
	for i := 1; i < len(children); i++ {
		if children[i].Size() != children[0].Size() {
			return nil, fmt.Errorf("newBVNaryOpNode(): invalid sizes")
		}
	}
	return &bvNaryOpNode{knd: kind, symbol: symbol, children: children}, nil
}

func (e *bvNaryOpNode) String() string {
	b := strings.Builder{}
	if e.children[0].e.isLeaf() {
		b.WriteString(e.children[0].String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.children[0].String()))
	}
	for i := 1; i < len(e.children); i++ {
		if e.children[i].e.isLeaf() {
			b.WriteString(fmt.Sprintf(" %s %s", e.symbol, e.children[i].String()))
		} else {
			b.WriteString(fmt.Sprintf(" %s (%s)", e.symbol, e.children[i].String()))
		}
	}
	return b.String()
}

func (e *bvNaryOpNode) size() uint {
	return e.children[0].Size()
}

func (e *bvNaryOpNode) subexprs() []termNode {
	res := make([]termNode, 0)
	for i := 0; i < len(e.children); i++ {
		res = append(res, e.children[i].e)
	}
	return res
}

func (e *bvNaryOpNode) kind() Kind {
	return e.knd
}

func (e *bvNaryOpNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))
	for i := 0; i < len(e.children); i++ {
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(e.children[i].e.rawPtr()))
		h.Write(raw)
	}
	return h.Sum64()
}

func (e *bvNaryOpNode) deepEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvNaryOpNode)
	if len(oe.children) != len(e.children) {
		return false
	}
	for i := 0; i < len(e.children); i++ {
		if !e.children[i].e.deepEq(oe.children[i].e) {
			return false
		}
	}
	return true
}

func (e *bvNaryOpNode) shallowEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvNaryOpNode)
	if len(oe.children) != len(e.children) {
		return false
	}
	for i := 0; i < len(e.children); i++ {
		if e.children[i].e.rawPtr() != oe.children[i].e.rawPtr() {
			return false
		}
	}
	return true
}

func (e *bvNaryOpNode) isLeaf() bool {
	return false
}

func (e *bvNaryOpNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBVAndNode(children []*BVExprPtr) (*bvNaryOpNode, error) {
	return newBVNaryOpNode(children, KindAnd, "&")
}
func newBVOrNode(children []*BVExprPtr) (*bvNaryOpNode, error) {
	return newBVNaryOpNode(children, KindOr, "|")
}
func newBVXorNode(children []*BVExprPtr) (*bvNaryOpNode, error) {
	return newBVNaryOpNode(children, KindXor, "^")
}
func newBVAddNode(children []*BVExprPtr) (*bvNaryOpNode, error) {
	return newBVNaryOpNode(children, KindAdd, "+")
}
func newBVMulNode(children []*BVExprPtr) (*bvNaryOpNode, error) {
	return newBVNaryOpNode(children, KindMul, "*")
}
func newBVSdivNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindSdiv, "s/")
}
func newBVUdivNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindUdiv, "u/")
}
func newBVSremNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindSrem, "s%")
}
func newBVUremNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindUrem, "u%")
}
func newBVShlNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindShl, "<<")
}
func newBVLshrNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindLshr, "l>>")
}
func newBVAshrNode(lhs, rhs *BVExprPtr) (*bvNaryOpNode, error) {
	children := make([]*BVExprPtr, 0)
	children = append(children, lhs)
	children = append(children, rhs)
	return newBVNaryOpNode(children, KindAshr, "a>>")
}

/*
 * KindNot, KindNeg
 */

type bvUnOpNode struct {
	knd    Kind
	symbol string
	child  *BVExprPtr
}

func newBVUnOpNode(child *BVExprPtr, kind Kind, symbol string) (*bvUnOpNode, error) {
	return &bvUnOpNode{knd: kind, symbol: symbol, child: child}, nil
}

func (e *bvUnOpNode) String() string {
	b := strings.Builder{}
	if e.child.e.isLeaf() {
		b.WriteString(fmt.Sprintf("%s%s", e.symbol, e.child.String()))
	} else {
		b.WriteString(fmt.Sprintf("%s(%s)", e.symbol, e.child.String()))
	}
	return b.String()
}

func (e *bvUnOpNode) size() uint {
	return e.child.Size()
}

func (e *bvUnOpNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.child.e)
	return res
}

func (e *bvUnOpNode) kind() Kind {
	return e.knd
}

func (e *bvUnOpNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.child.e.rawPtr()))
	h.Write(raw)
	return h.Sum64()
}

func (e *bvUnOpNode) deepEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvUnOpNode)
	return e.child.e.deepEq(oe.child.e)
}

func (e *bvUnOpNode) shallowEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvUnOpNode)
	return e.child.e.rawPtr() == oe.child.e.rawPtr()
}

func (e *bvUnOpNode) isLeaf() bool {
	return false
}

func (e *bvUnOpNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBVNotNode(e *BVExprPtr) (*bvUnOpNode, error) {
	return newBVUnOpNode(e, KindNot, "~")
}
func newBVNegNode(e *BVExprPtr) (*bvUnOpNode, error) {
	return newBVUnOpNode(e, KindNeg, "-")
}

/*
 * KindUlt, KindUle, KindUgt, KindUge, KindSlt, KindSle, KindSgt, KindSge, KindEq
 */

type bvCmpNode struct {
	knd      Kind
	symbol   string
	lhs, rhs *BVExprPtr
}

func newBVCmpNode(lhs, rhs *BVExprPtr, kind Kind, symbol string) (*bvCmpNode, error) {
	if rhs.Size() != lhs.Size() {
		return nil, fmt.Errorf("newBVCmpNode(): invalid sizes")
	}
	return &bvCmpNode{knd: kind, symbol: symbol, lhs: lhs, rhs: rhs}, nil
}

func (e *bvCmpNode) String() string {
	b := strings.Builder{}
	if e.lhs.e.isLeaf() {
		b.WriteString(e.lhs.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.lhs.String()))
	}

	b.WriteString(fmt.Sprintf(" %s ", e.symbol))

	if e.rhs.e.isLeaf() {
		b.WriteString(e.rhs.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.rhs.String()))
	}
	return b.String()
}

func (e *bvCmpNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.lhs.e)
	res = append(res, e.rhs.e)
	return res
}

func (e *bvCmpNode) kind() Kind {
	return e.knd
}

func (e *bvCmpNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.lhs.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.rhs.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *bvCmpNode) deepEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvCmpNode)
	if !e.lhs.e.deepEq(oe.lhs.e) {
		return false
	}
	if !e.rhs.e.deepEq(oe.rhs.e) {
		return false
	}
	return true
}

func (e *bvCmpNode) shallowEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvCmpNode)
	if e.lhs.e.rawPtr() != oe.lhs.e.rawPtr() {
		return false
	}
	if e.rhs.e.rawPtr() != oe.rhs.e.rawPtr() {
		return false
	}
	return true
}

func (e *bvCmpNode) isLeaf() bool {
	return false
}

func (e *bvCmpNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBVUltNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindUlt, "u<")
}
func newBVUleNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindUle, "u<=")
}
func newBVUgtNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindUgt, "u>")
}
func newBVUgeNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindUge, "u>=")
}
func newBVSltNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindSlt, "s<")
}
func newBVSleNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindSle, "s<=")
}
func newBVSgtNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindSgt, "s>")
}
func newBVSgeNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindSge, "s>=")
}
func newBVEqNode(lhs, rhs *BVExprPtr) (*bvCmpNode, error) {
	return newBVCmpNode(lhs, rhs, KindEq, "==")
}

/*
 * KindBoolAnd, KindBoolOr
 */

type boolNaryOpNode struct {
	knd      Kind
	symbol   string
	children []*BoolExprPtr
}

func newBoolNaryOpNode(children []*BoolExprPtr, kind Kind, symbol string) (*boolNaryOpNode, error) {
	return &boolNaryOpNode{knd: kind, symbol: symbol, children: children}, nil
}

func (e *boolNaryOpNode) String() string {
	b := strings.Builder{}
	if e.children[0].e.isLeaf() {
		b.WriteString(e.children[0].e.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.children[0].e.String()))
	}

	for i := 1; i < len(e.children); i++ {
		b.WriteString(fmt.Sprintf(" %s ", e.symbol))
		if e.children[i].e.isLeaf() {
			b.WriteString(e.children[i].String())
		} else {
			b.WriteString(fmt.Sprintf("(%s)", e.children[i].String()))
		}
	}
	return b.String()
}

func (e *boolNaryOpNode) subexprs() []termNode {
	res := make([]termNode, 0)
	for i := 0; i < len(e.children); i++ {
		res = append(res, e.children[i].e)
	}
	return res
}

func (e *boolNaryOpNode) kind() Kind {
	return e.knd
}

func (e *boolNaryOpNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	for i := 0; i < len(e.children); i++ {
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(e.children[i].e.rawPtr()))
		h.Write(raw)
	}
	return h.Sum64()
}

func (e *boolNaryOpNode) deepEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*boolNaryOpNode)
	if len(e.children) != len(oe.children) {
		return false
	}

	for i := 0; i < len(e.children); i++ {
		if !e.children[i].e.deepEq(oe.children[i].e) {
			return false
		}
	}
	return true
}

func (e *boolNaryOpNode) shallowEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*boolNaryOpNode)
	if len(e.children) != len(oe.children) {
		return false
	}

	for i := 0; i < len(e.children); i++ {
		if e.children[i].e.rawPtr() != oe.children[i].e.rawPtr() {
			return false
		}
	}
	return true
}

func (e *boolNaryOpNode) isLeaf() bool {
	return false
}

func (e *boolNaryOpNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBoolAndNode(children []*BoolExprPtr) (*boolNaryOpNode, error) {
	return newBoolNaryOpNode(children, KindBoolAnd, "&&")
}
func newBoolOrNode(children []*BoolExprPtr) (*boolNaryOpNode, error) {
	return newBoolNaryOpNode(children, KindBoolOr, "||")
}

/*
 * KindBoolNot
 */

type boolNotOpNode struct {
	knd    Kind
	symbol string
	child  *BoolExprPtr
}

func newBoolNotOpNode(child *BoolExprPtr, kind Kind, symbol string) (*boolNotOpNode, error) {
	return &boolNotOpNode{knd: kind, symbol: symbol, child: child}, nil
}

func (e *boolNotOpNode) String() string {
	b := strings.Builder{}
	if e.child.e.isLeaf() {
		b.WriteString(fmt.Sprintf("%s%s", e.symbol, e.child.String()))
	} else {
		b.WriteString(fmt.Sprintf("%s(%s)", e.symbol, e.child.String()))
	}
	return b.String()
}

func (e *boolNotOpNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.child.e)
	return res
}

func (e *boolNotOpNode) kind() Kind {
	return e.knd
}

func (e *boolNotOpNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte(e.symbol))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.child.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *boolNotOpNode) deepEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*boolNotOpNode)
	return e.child.e.deepEq(oe.child.e)
}

func (e *boolNotOpNode) shallowEq(other boolNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*boolNotOpNode)
	return e.child.e.rawPtr() == oe.child.e.rawPtr()
}

func (e *boolNotOpNode) isLeaf() bool {
	return false
}

func (e *boolNotOpNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBoolNotNode(e *BoolExprPtr) (*boolNotOpNode, error) {
	return newBoolNotOpNode(e, KindBoolNot, "!")
}

/*
 *  KindExtract
 */

type bvExtractNode struct {
	child     *BVExprPtr
	high, low uint
}

func newBVExtractNode(child *BVExprPtr, high, low uint) (*bvExtractNode, error) {
	if high < low {
		return nil, fmt.Errorf("newBVExtractNode(): high < low")
	}
	if child.Size() < high-low+1 {
		return nil, fmt.Errorf("newBVExtractNode(): high-low+1 > child.Size")
	}
	return &bvExtractNode{child: child, high: high, low: low}, nil
}

func (e *bvExtractNode) String() string {
	b := strings.Builder{}
	if e.child.e.isLeaf() {
		b.WriteString(e.child.String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.child.String()))
	}
	b.WriteString(fmt.Sprintf("[%d:%d]", e.high, e.low))
	return b.String()
}

func (e *bvExtractNode) size() uint {
	return e.high - e.low + 1
}

func (e *bvExtractNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.child.e)
	return res
}

func (e *bvExtractNode) kind() Kind {
	return KindExtract
}

func (e *bvExtractNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("KindExtract"))
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.child.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.low))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.high))
	h.Write(raw)
	return h.Sum64()
}

func (e *bvExtractNode) deepEq(other bvNode) bool {
	if other.kind() != KindExtract {
		return false
	}
	oe := other.(*bvExtractNode)
	return e.child.e.deepEq(oe.child.e) &&
		e.low == oe.low &&
		e.high == oe.high
}

func (e *bvExtractNode) shallowEq(other bvNode) bool {
	if other.kind() != KindExtract {
		return false
	}
	oe := other.(*bvExtractNode)
	return e.child.e.rawPtr() == oe.child.e.rawPtr() &&
		e.low == oe.low &&
		e.high == oe.high
}

func (e *bvExtractNode) isLeaf() bool {
	return false
}

func (e *bvExtractNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

/*
 *  KindConcat
 */

type bvConcatNode struct {
	children []*BVExprPtr
}

func newBVConcatNode(children []*BVExprPtr) (*bvConcatNode, error) {
	if len(children) < 2 {
		return nil, fmt.Errorf("newBVConcatNode(): expected at least 2 children")
	}
	return &bvConcatNode{children: children}, nil
}

func (e *bvConcatNode) String() string {
	b := strings.Builder{}
	if e.children[0].e.isLeaf() {
		b.WriteString(e.children[0].String())
	} else {
		b.WriteString(fmt.Sprintf("(%s)", e.children[0].String()))
	}

	for i := 1; i < len(e.children); i++ {
		if e.children[i].e.isLeaf() {
			b.WriteString(fmt.Sprintf(" .. %s", e.children[i].String()))
		} else {
			b.WriteString(fmt.Sprintf(" .. (%s)", e.children[i].String()))
		}
	}
	return b.String()
}

func (e *bvConcatNode) size() uint {
	size := uint(0)
	for i := 0; i < len(e.children); i++ {
		size += e.children[i].Size()
	}
	return size
}

func (e *bvConcatNode) subexprs() []termNode {
	res := make([]termNode, 0)
	for i := 0; i < len(e.children); i++ {
		res = append(res, e.children[i].e)
	}
	return res
}

func (e *bvConcatNode) kind() Kind {
	return KindConcat
}

func (e *bvConcatNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("KindConcat"))
	for i := 0; i < len(e.children); i++ {
		raw := make([]byte, 8)
		binary.BigEndian.PutUint64(raw, uint64(e.children[i].e.rawPtr()))
		h.Write(raw)
	}
	return h.Sum64()
}

func (e *bvConcatNode) deepEq(other bvNode) bool {
	if other.kind() != KindConcat {
		return false
	}
	oe := other.(*bvConcatNode)
	if len(e.children) != len(oe.children) {
		return false
	}
	for i := 0; i < len(e.children); i++ {
		if !e.children[i].e.deepEq(oe.children[i].e) {
			return false
		}
	}
	return true
}

func (e *bvConcatNode) shallowEq(other bvNode) bool {
	if other.kind() != KindConcat {
		return false
	}
	oe := other.(*bvConcatNode)
	if len(e.children) != len(oe.children) {
		return false
	}
	for i := 0; i < len(e.children); i++ {
		if e.children[i].e.rawPtr() != oe.children[i].e.rawPtr() {
			return false
		}
	}
	return true
}

func (e *bvConcatNode) isLeaf() bool {
	return false
}

func (e *bvConcatNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

/*
 *   KindZExt, KindSExt
 */

type bvExtendNode struct {
	signed bool
	n      uint
	child  *BVExprPtr
}

func newBVExtendNode(child *BVExprPtr, signed bool, n uint) (*bvExtendNode, error) {
	if n == 0 {
		return nil, fmt.Errorf("trying to create a BVExpreExtend with n == 0")
	}
	return &bvExtendNode{child: child, n: n, signed: signed}, nil
}

func (e *bvExtendNode) String() string {
	b := strings.Builder{}
	if e.signed {
		b.WriteString("SExt(")
	} else {
		b.WriteString("ZExt(")
	}
	if e.child.e.isLeaf() {
		b.WriteString(fmt.Sprintf("%s, ", e.child.String()))
	} else {
		b.WriteString(fmt.Sprintf("(%s), ", e.child.String()))
	}
	b.WriteString(fmt.Sprintf("%d)", e.n))
	return b.String()
}

func (e *bvExtendNode) size() uint {
	return e.child.Size() + e.n
}

func (e *bvExtendNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.child.e)
	return res
}

func (e *bvExtendNode) kind() Kind {
	if e.signed {
		return KindSExt
	}
	return KindZExt
}

func (e *bvExtendNode) hash() uint64 {
	h := xxhash.New()
	if e.signed {
		h.Write([]byte("KindSExt"))
	} else {
		h.Write([]byte("KindZExt"))
	}

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.child.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *bvExtendNode) deepEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvExtendNode)
	return e.n == oe.n && e.child.e.deepEq(oe.child.e)
}

func (e *bvExtendNode) shallowEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvExtendNode)
	return e.n == oe.n && e.child.e.rawPtr() == oe.child.e.rawPtr()
}

func (e *bvExtendNode) isLeaf() bool {
	return false
}

func (e *bvExtendNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}

func newBVSExtNode(e *BVExprPtr, n uint) (*bvExtendNode, error) {
	return newBVExtendNode(e, true, n)
}
func newBVZExtNode(e *BVExprPtr, n uint) (*bvExtendNode, error) {
	return newBVExtendNode(e, false, n)
}

/*
 *   KindITE
 */

type bvIteNode struct {
	cond    *BoolExprPtr
	iftrue  *BVExprPtr
	iffalse *BVExprPtr
}

func newBVIteNode(cond *BoolExprPtr, iftrue *BVExprPtr, iffalse *BVExprPtr) (*bvIteNode, error) {
	if iftrue.Size() != iffalse.Size() {
		return nil, fmt.Errorf("newBVIteNode(): invalid sizes")
	}
	return &bvIteNode{cond: cond, iftrue: iftrue, iffalse: iffalse}, nil
}

func (e *bvIteNode) String() string {
	b := strings.Builder{}
	b.WriteString("ITE(")
	b.WriteString(e.cond.String())
	b.WriteString(", ")
	b.WriteString(e.iftrue.String())
	b.WriteString(", ")
	b.WriteString(e.iffalse.String())
	b.WriteString(")")
	return b.String()
}

func (e *bvIteNode) size() uint {
	return e.iftrue.Size()
}

func (e *bvIteNode) subexprs() []termNode {
	res := make([]termNode, 0)
	res = append(res, e.iftrue.e)
	res = append(res, e.iffalse.e)
	res = append(res, e.cond.e)
	return res
}

func (e *bvIteNode) kind() Kind {
	return KindITE
}

func (e *bvIteNode) hash() uint64 {
	h := xxhash.New()
	h.Write([]byte("KindITE"))

	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, uint64(e.cond.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.iftrue.e.rawPtr()))
	h.Write(raw)
	binary.BigEndian.PutUint64(raw, uint64(e.iffalse.e.rawPtr()))
	h.Write(raw)

	return h.Sum64()
}

func (e *bvIteNode) deepEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvIteNode)
	return e.cond.e.deepEq(oe.cond.e) && e.iftrue.e.deepEq(oe.iftrue.e) && e.iffalse.e.deepEq(oe.iffalse.e)
}

func (e *bvIteNode) shallowEq(other bvNode) bool {
	if other.kind() != e.kind() {
		return false
	}
	oe := other.(*bvIteNode)
	return e.cond.e.rawPtr() == oe.cond.e.rawPtr() &&
		e.iftrue.e.rawPtr() == oe.iftrue.e.rawPtr() &&
		e.iffalse.e.rawPtr() == oe.iffalse.e.rawPtr()
}

func (e *bvIteNode) isLeaf() bool {
	return false
}

func (e *bvIteNode) rawPtr() uintptr {
	return uintptr(unsafe.Pointer(e))
}
