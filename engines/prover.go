// Package engines implements spec.md layer L2: the K-induction prover,
// the IC3/property-directed-reachability family, and the CEGAR driver,
// all built on package core's TransitionSystem/Unroller/ConeOfInfluence
// and package smt's incremental Context.
package engines

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/smt"
)

// Result is spec.md §6's three-valued verification outcome.
type Result int

const (
	UNKNOWN Result = iota
	SAFE
	UNSAFE
)

func (r Result) String() string {
	switch r {
	case SAFE:
		return "safe"
	case UNSAFE:
		return "unsafe"
	default:
		return "unknown"
	}
}

// Options mirrors spec.md §6's front-end options that reach into the
// engine layer: the bound to check up to, a verbosity level mapped onto
// logrus levels, and whether the transition system is in functional
// form. The engines do not read FunctionalTS: one that builds its own
// fresh TransitionSystem takes the form from the source system's
// IsFunctional.
type Options struct {
	Bound        int
	RandomSeed   int64
	Verbosity    int
	FunctionalTS bool
}

// Prover is the common interface every engine in this package
// implements: check the property up to Bound steps, returning SAFE
// with no witness, UNSAFE with a finite counterexample trace, or
// UNKNOWN if the bound is exhausted without a definite answer.
type Prover interface {
	Check() (Result, core.Witness, error)
}

// newLogger builds one *logrus.Entry per engine instance, named after
// the engine, with the level spec.md §6's verbosity knob maps to
// (0 = Warn, 1 = Info, 2+ = Debug) — the same coarse three-tier mapping
// SPEC_FULL.md's ambient-stack section specifies for every component in
// this module.
func newLogger(engine string, verbosity int) *logrus.Entry {
	log := logrus.New()
	switch {
	case verbosity >= 2:
		log.SetLevel(logrus.DebugLevel)
	case verbosity == 1:
		log.SetLevel(logrus.InfoLevel)
	default:
		log.SetLevel(logrus.WarnLevel)
	}
	return log.WithField("engine", engine)
}

// recoverable reports whether err's root cause is core.ErrSolverFailure
// (spec.md §7): a solver failure degrades the current check to UNKNOWN
// rather than aborting the whole run, since it does not indicate a
// corrupted proof state the way ErrInternal does.
func recoverable(err error) bool {
	return errors.Cause(err) == core.ErrSolverFailure
}

func buildContext(ts *core.TransitionSystem) *smt.Context {
	return smt.NewContext(ts.Builder())
}
