// cycledetect runs the cycle detection engine over a session CSV and
// prints the detected events, cycles and anomalies without touching a
// database.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gabrielsapucaia/trackingnew-sub000/internal/detection"
	"github.com/gabrielsapucaia/trackingnew-sub000/internal/ingest"
)

func main() {
	var (
		input     = flag.String("input", "", "path to the session CSV")
		asJSON    = flag.Bool("json", false, "emit the full result as JSON")
		speedStop = flag.Float64("speed-stop", 0, "override stop speed threshold (km/h)")
		kMads     = flag.Float64("k-mads", 0, "override anomaly threshold in MADs")
	)
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", *input, err)
	}
	defer f.Close()

	samples, err := ingest.ReadSamples(f)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", *input, err)
	}

	params := detection.DefaultParams()
	if *speedStop > 0 {
		params.SpeedStopKmh = *speedStop
	}
	if *kMads > 0 {
		params.AnomalyKMads = *kMads
	}

	result, err := detection.NewEngine(params).Detect(0, samples)
	if err != nil {
		log.Fatalf("Detection failed: %v", err)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		return
	}

	printReport(result)
}

func printReport(result *detection.Result) {
	fmt.Printf("Load anchor: %s (%d segments)\n", result.LoadAnchor.Key, result.LoadAnchor.Count)
	fmt.Printf("Dump anchor: %s (%d segments)\n\n", result.DumpAnchor.Key, result.DumpAnchor.Count)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CYCLE\tKIND\tSTART\tEND\tDURATION\tCOMPLETE")
	for _, e := range result.Events {
		cycle := "-"
		if e.CycleID != nil {
			cycle = fmt.Sprintf("%d", *e.CycleID)
		}
		complete := ""
		if e.Kind == "LOAD" {
			complete = fmt.Sprintf("%t", e.IsComplete)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0fs\t%s\n",
			cycle, e.Kind,
			e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339),
			e.DurationSeconds, complete)
	}
	w.Flush()

	fmt.Printf("\n%d cycles detected\n", len(result.Cycles))
	for _, c := range result.Cycles {
		fmt.Printf("  cycle %d: load %.0fs, haul %.2fkm/%.0fs, dump %.0fs\n",
			c.Number, c.LoadSeconds, c.HaulLoadedKm, c.HaulLoadedSeconds, c.DumpSeconds)
	}

	if len(result.Anomalies) > 0 {
		fmt.Printf("\n%d anomalies\n", len(result.Anomalies))
		for _, a := range result.Anomalies {
			fmt.Printf("  cycle %d %s: %.1f above threshold %.1f", a.CycleNumber, a.Phase, a.Value, a.Threshold)
			if a.HasIdle {
				fmt.Printf(" (idle %.0fs at %.5f,%.5f)", a.IdleSeconds, a.IdleLat, a.IdleLon)
			}
			fmt.Println()
		}
	}
}
