package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
	"github.com/musaraza08/ant-colony-optimisation/internal/experiment"
)

// stdLogger adapts the standard log package to the colony.Logger interface.
type stdLogger struct{}

func (stdLogger) Debugf(format string, v ...any) { log.Printf("[DEBUG] "+format, v...) }
func (stdLogger) Infof(format string, v ...any)  { log.Printf("[INFO] "+format, v...) }
func (stdLogger) Warnf(format string, v ...any)  { log.Printf("[WARN] "+format, v...) }
func (stdLogger) Errorf(format string, v ...any) { log.Printf("[ERROR] "+format, v...) }

func main() {
	var (
		configFile = flag.String("config", "", "path to a base scenario config file (JSON or YAML)")
		sweep      = flag.String("sweep", "rho=0.02,0.05,0.1,0.2", "parameter sweep, e.g. \"rho=0.02,0.1;epsilon=0.1,0.3\"")
		maxTicks   = flag.Int("max-ticks", 5000, "tick limit per experiment")
		window     = flag.Int("window", 60, "throughput sampling window in ticks")
		workers    = flag.Int("workers", 0, "parallel workers (0 = one per CPU)")
		outDir     = flag.String("out", "results", "output directory for CSV and charts")
	)
	flag.Parse()

	cfg := colony.DefaultConfig()
	if *configFile != "" {
		loaded, err := colony.LoadConfig(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	ranges, err := parseSweep(*sweep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing sweep: %v\n", err)
		os.Exit(1)
	}
	grid := experiment.ParameterGrid(ranges)

	logger := stdLogger{}
	logger.Infof("starting batch run with %d experiments...", len(grid))
	started := time.Now()

	opts := experiment.Options{MaxTicks: *maxTicks, WindowSize: *window}
	results := experiment.RunBatch(cfg, grid, opts, *workers, logger)

	points, err := experiment.CollectPoints(results)
	if err != nil {
		logger.Errorf("batch had failures: %v", err)
	}
	logger.Infof("batch completed in %s", time.Since(started).Round(time.Millisecond))

	if len(points) == 0 {
		fmt.Fprintln(os.Stderr, "no data points produced")
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	stamp := time.Now().Format("20060102-150405")
	csvPath := filepath.Join(*outDir, "throughput_over_time_"+stamp+".csv")
	if err := experiment.WriteCSV(points, csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing csv: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("results saved to %s", csvPath)

	chartPath := filepath.Join(*outDir, "throughput_over_time_"+stamp+".png")
	if err := experiment.ThroughputChart(points, chartPath); err != nil {
		fmt.Fprintf(os.Stderr, "error rendering chart: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("chart saved to %s", chartPath)

	logger.Infof("recorded %d data points across %d configurations", len(points), len(grid))
}

// parseSweep turns "rho=0.02,0.05;epsilon=0.1,0.3" into named value ranges.
func parseSweep(spec string) (map[string][]float64, error) {
	ranges := make(map[string][]float64)
	if strings.TrimSpace(spec) == "" {
		return ranges, nil
	}
	for _, part := range strings.Split(spec, ";") {
		name, list, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("malformed sweep entry %q (want name=v1,v2,...)", part)
		}
		name = strings.TrimSpace(name)
		var values []float64
		for _, raw := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q for %s: %w", raw, name, err)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, fmt.Errorf("no values for %s", name)
		}
		ranges[name] = values
	}
	return ranges, nil
}
