package smt

import (
	"fmt"

	"github.com/aclements/go-z3/z3"
)

// Three-valued check result, shared by Context.CheckSat/CheckSatAssuming.
const (
	RESULT_ERROR   = 0
	RESULT_SAT     = 1
	RESULT_UNSAT   = 2
	RESULT_UNKNOWN = 3
)

// convertZ3Const reads a model value for a bit-vector symbol back into
// this package's own BVConst, the same hex round-trip z3backend.go used.
func convertZ3Const(c z3.BV) (*BVConst, error) {
	v := MakeBVConstFromString(c.String()[2:], 16, uint(c.Sort().BVSize()))
	if v == nil {
		return nil, fmt.Errorf("not a constant")
	}
	return v, nil
}
