package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/shopspring/decimal"
)

func main() {
	from := flag.Int64("from", 1_000_000, "first monthly net")
	to := flag.Int64("to", 10_000_000, "last monthly net")
	step := flag.Int64("step", 500_000, "increment")
	flag.Parse()

	if err := sweep(os.Stdout, *from, *to, *step); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

// sweep prints one CSV row per net amount in [from, to].
func sweep(w io.Writer, from, to, step int64) error {
	if step <= 0 {
		return fmt.Errorf("--step must be positive, got %d", step)
	}

	ce := calculation.NewProjectionEngine()
	fmt.Fprintln(w, "Net,Gross,IncomeTax,Residual,Iterations")
	for n := from; n <= to; n += step {
		sol, err := ce.SolveGross(decimal.NewFromInt(n))
		if err != nil {
			fmt.Fprintf(w, "%d,error: %v\n", n, err)
			continue
		}
		fmt.Fprintf(w, "%d,%s,%s,%s,%d\n", n, sol.Gross.StringFixed(0),
			sol.Deductions.IncomeTax.StringFixed(0), sol.Residual.StringFixed(2), sol.Iterations)
	}
	return nil
}
