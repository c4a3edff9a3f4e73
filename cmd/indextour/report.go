package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Tour phases, in the order the policies are applied.
const (
	phaseIndexed  = "consistent"
	phaseNone     = "none"
	phaseExcluded = "field2 excluded"
)

type measurement struct {
	phase    string
	query    string
	matches  int
	charge   float64
	duration time.Duration
}

// report accumulates the measurements and renders the final comparison.
type report struct {
	loadCount    int
	loadCharge   float64
	loadDuration time.Duration

	measurements []measurement
}

func (r *report) add(m measurement) {
	r.measurements = append(r.measurements, m)
}

func (r *report) print(total time.Duration) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "INDEXING POLICY TOUR")
	fmt.Fprintf(w, "documents loaded\t%d\n", r.loadCount)
	if r.loadCount > 0 {
		fmt.Fprintf(w, "load request charge\t%.2f RU\n", r.loadCharge)
		fmt.Fprintf(w, "load duration\t%s\n", r.loadDuration.Round(time.Millisecond))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "POLICY\tQUERY\tMATCHES\tCHARGE (RU)\tLATENCY")
	for _, m := range r.measurements {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2f\t%s\n",
			m.phase, m.query, m.matches, m.charge,
			m.duration.Round(time.Microsecond),
		)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "total runtime\t%s\n", total.Round(time.Millisecond))
	_ = w.Flush()
}
