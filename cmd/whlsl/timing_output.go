package main

import (
	"fmt"
	"io"
	"strings"

	"whlsl/internal/driver"
)

// printTimings writes one line per file with its phase breakdown.
func printTimings(out io.Writer, results []*driver.FileResult) {
	var total float64
	for _, r := range results {
		if r.Timing == nil {
			continue
		}
		parts := make([]string, 0, len(r.Timing.Phases))
		for _, p := range r.Timing.Phases {
			parts = append(parts, fmt.Sprintf("%s %.1f ms", p.Name, p.DurationMS))
		}
		cached := ""
		if r.Cached {
			cached = " (cached)"
		}
		fmt.Fprintf(out, "%s%s: %s; total %.1f ms\n", r.Path, cached, strings.Join(parts, ", "), r.Timing.TotalMS)
		total += r.Timing.TotalMS
	}
	if len(results) > 1 {
		fmt.Fprintf(out, "checked %d files, %.1f ms cumulative\n", len(results), total)
	}
}
