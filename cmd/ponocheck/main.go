// Command ponocheck is the thin front end over the prover core: it
// wires spec.md §6's options onto a cobra command and prints the
// verdict, exiting with a status that distinguishes SAFE, UNSAFE,
// UNKNOWN and error the way §7's "user-visible behaviour" requires.
// Building (ts, prop) from an input file is out of scope here; this
// demonstrates the wiring with a fixed example transition system.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/log-when/pono/core"
	"github.com/log-when/pono/engines"
	"github.com/log-when/pono/smt"
)

const (
	exitSafe    = 0
	exitUnsafe  = 1
	exitUnknown = 2
	exitError   = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	var engine string
	var bound int
	var randomSeed int64
	var verbosity int
	var functionalTS bool

	cmd := &cobra.Command{
		Use:   "ponocheck",
		Short: "check a safety property over a symbolic transition system",
	}
	cmd.Flags().StringVar(&engine, "engine", "kind", "bmc|kind|ic3-bit|ic3-predicate|ic3-sa|cegar-values")
	cmd.Flags().IntVar(&bound, "bound", 0, "maximum unrolling/frame depth")
	cmd.Flags().Int64Var(&randomSeed, "random-seed", 0, "seed for generalisation tie-breaking")
	cmd.Flags().IntVar(&verbosity, "verbosity", 0, "diagnostic verbosity, 0..3")
	cmd.Flags().BoolVar(&functionalTS, "functional-ts", true, "present the transition system in functional form")

	exitCode := exitError
	cmd.RunE = func(*cobra.Command, []string) error {
		log := logrus.New()
		log.SetLevel(verbosityLevel(verbosity))

		opts := engines.Options{
			Bound:        bound,
			RandomSeed:   randomSeed,
			Verbosity:    verbosity,
			FunctionalTS: functionalTS,
		}

		prop := exampleProperty(functionalTS)
		prover, err := buildProver(engine, prop, opts)
		if err != nil {
			exitCode = exitError
			return err
		}

		result, witness, err := prover.Check()
		if err != nil {
			exitCode = exitError
			return err
		}

		switch result {
		case engines.SAFE:
			exitCode = exitSafe
		case engines.UNSAFE:
			exitCode = exitUnsafe
			printWitness(witness)
		default:
			exitCode = exitUnknown
		}
		fmt.Println(result)
		return nil
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitError
	}
	return exitCode
}

func verbosityLevel(v int) logrus.Level {
	switch {
	case v >= 2:
		return logrus.DebugLevel
	case v == 1:
		return logrus.InfoLevel
	default:
		return logrus.WarnLevel
	}
}

func buildProver(engine string, prop *core.Property, opts engines.Options) (engines.Prover, error) {
	switch engine {
	case "bmc", "kind":
		return engines.NewKInduction(prop, opts), nil
	case "ic3-bit":
		return engines.NewIC3(prop, opts), nil
	case "ic3-predicate":
		return engines.NewIC3Predicate(prop, opts, nil), nil
	case "ic3-sa":
		return engines.NewIC3SA(prop, opts), nil
	case "cegar-values":
		return engines.NewCegarValues(prop, opts, func(p *core.Property, o engines.Options) engines.Prover {
			return engines.NewIC3(p, o)
		}), nil
	default:
		return nil, fmt.Errorf("ponocheck: unknown engine %q", engine)
	}
}

// exampleProperty builds a simple bounded counter (c starts at 0,
// increments each step) with the property c != 200, a minimal stand-in
// for the front end this module's scope excludes.
func exampleProperty(functional bool) *core.Property {
	eb := smt.NewExprBuilder()
	ts := core.NewTransitionSystem(eb, functional)
	cur, next := ts.DeclareStateVar("c", smt.BVSort(32))

	zero := eb.BVV(0, 32)
	eq0, _ := eb.Eq(cur.(*smt.BVExprPtr), zero)
	_ = ts.ConstrainInit(eq0)

	one := eb.BVV(1, 32)
	sum, _ := eb.Add(cur.(*smt.BVExprPtr), one)
	if functional {
		_ = ts.AssignNext("c", sum)
	} else {
		eq, _ := eb.Eq(next.(*smt.BVExprPtr), sum)
		_ = ts.ConstrainTrans(eq)
	}

	limit := eb.BVV(200, 32)
	neq, _ := eb.Eq(cur.(*smt.BVExprPtr), limit)
	prop, _ := eb.BoolNot(neq)
	return core.NewProperty(ts, prop)
}

func printWitness(w core.Witness) {
	for i, step := range w {
		fmt.Printf("step %d:\n", i)
		for name, v := range step.BV {
			fmt.Printf("  %s = %s\n", name, v.String())
		}
		for name, v := range step.Bool {
			fmt.Printf("  %s = %v\n", name, v)
		}
	}
}
