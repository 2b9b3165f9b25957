// orbitplot samples a Keplerian orbit into a closed polyline and prints
// it as CSV, for eyeballing orbit shapes outside the daemon.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/tanepiper/teskooano-sub012/internal/orbit"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintln(os.Stderr, "Usage: orbitplot <semi_major_axis_au> <eccentricity> <period_days> [segments] [inclination_deg]")
		os.Exit(1)
	}

	a := parse(os.Args[1])
	e := parse(os.Args[2])
	periodDays := parse(os.Args[3])
	segments := 128
	if len(os.Args) > 4 {
		segments = int(parse(os.Args[4]))
	}
	inclination := 0.0
	if len(os.Args) > 5 {
		inclination = parse(os.Args[5])
	}

	el := orbit.Elements{
		SemiMajorAxisM: a * orbit.AU,
		Eccentricity:   e,
		InclinationRad: mgl64.DegToRad(inclination),
		PeriodS:        periodDays * 86400,
	}

	pts := orbit.SamplePath(el, segments, 1/orbit.AU)
	if len(pts) == 0 {
		fmt.Fprintln(os.Stderr, "degenerate orbit, nothing to plot")
		os.Exit(1)
	}

	fmt.Println("x_au,y_au,z_au")
	for _, p := range pts {
		fmt.Printf("%.9f,%.9f,%.9f\n", p.X(), p.Y(), p.Z())
	}
}

func parse(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad number %q: %v\n", s, err)
		os.Exit(1)
	}
	return v
}
