package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"quantum-energy-scheduler/internal/backend"
	"quantum-energy-scheduler/internal/config"
	"quantum-energy-scheduler/internal/logger"
	"quantum-energy-scheduler/internal/model"
	"quantum-energy-scheduler/internal/pipeline"
	"quantum-energy-scheduler/internal/report"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "optimize":
		cmdOptimize(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli optimize --data region_data.json --tuning examples/tuning.yaml --out results/schedule.csv")
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - the data file holds {region, hourly, capacity} as accepted by POST /api/v1/optimize")
	fmt.Println("  - outputs CSV with action=CHARGE/DISCHARGE/HOLD per hour")
	fmt.Println("  - --seed fixes the simulator for reproducible schedules")
}

// regionData mirrors the API request body so a saved request can be
// replayed from the command line.
type regionData struct {
	Region   string                `json:"region"`
	Hourly   []model.HourlyRecord  `json:"hourly"`
	Capacity model.CapacityProfile `json:"capacity"`
}

func cmdOptimize(args []string) {
	fs := flag.NewFlagSet("optimize", flag.ExitOnError)
	dataPath := fs.String("data", "region_data.json", "Path to region data JSON")
	tuningPath := fs.String("tuning", "", "Optional YAML tuning preset")
	outPath := fs.String("out", "results/schedule.csv", "Output CSV path")
	seed := fs.Int64("seed", 1, "Simulator seed")
	verbose := fs.Bool("v", false, "Verbose pipeline logging")
	_ = fs.Parse(args)

	data, err := loadRegionData(*dataPath)
	if err != nil {
		panic(err)
	}

	tuning := config.DefaultTuning()
	if *tuningPath != "" {
		tuning, err = config.LoadTuning(*tuningPath)
		if err != nil {
			panic(err)
		}
	}

	log := logger.NewNop()
	if *verbose {
		log = logger.Get("debug")
	}

	engine := pipeline.New(backend.NewSimulator(*seed), log)
	run, err := engine.Execute(context.Background(), pipeline.Request{
		Region:   data.Region,
		Hourly:   data.Hourly,
		Capacity: data.Capacity,
		Tuning:   tuning,
	})
	if err != nil {
		panic(err)
	}
	res := run.Result

	if err := os.MkdirAll(filepath.Dir(*outPath), 0o755); err != nil {
		panic(err)
	}
	if err := report.WriteScheduleCSV(*outPath, res.Schedule); err != nil {
		panic(err)
	}

	fmt.Printf("Wrote %d rows to %s\n", len(res.Schedule), *outPath)
	fmt.Printf("Run %s region=%s qubits=%d depth=%d iterations=%d fidelity=%.3f\n",
		run.ID, run.Region, res.Metrics.Qubits, res.Metrics.Depth, res.Metrics.Iterations, res.Metrics.Fidelity)
	fmt.Printf("Optimization=%d kWh CostSaving=%d CarbonReduction=%d Efficiency=%d%%\n",
		res.Summary.TotalOptimization, res.Summary.CostSaving, res.Summary.CarbonReduction, res.Summary.Efficiency)
	for _, rec := range res.Recommendations {
		fmt.Printf("  [%s] %s: %s\n", rec.Time, rec.Type, rec.Message)
	}
}

func loadRegionData(path string) (*regionData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var d regionData
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(d.Hourly) == 0 {
		return nil, fmt.Errorf("%s: hourly series is empty", path)
	}
	if err := d.Capacity.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &d, nil
}
