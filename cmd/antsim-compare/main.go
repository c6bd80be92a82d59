package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

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
		wallsSpec  = flag.String("walls", "0,5,10,15,20,30", "comma-separated wall counts to test")
		trials     = flag.Int("trials", 3, "trials per wall count")
		maxTicks   = flag.Int("max-ticks", 10000, "tick limit per colony run")
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

	wallCounts, err := parseWalls(*wallsSpec)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing walls: %v\n", err)
		os.Exit(1)
	}

	logger := stdLogger{}
	results, err := experiment.RunComparison(cfg, wallCounts, *trials, *maxTicks, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "comparison failed: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error creating output dir: %v\n", err)
		os.Exit(1)
	}

	csvPath := filepath.Join(*outDir, "direct_comparison.csv")
	if err := experiment.WriteComparisonCSV(results, csvPath); err != nil {
		fmt.Fprintf(os.Stderr, "error writing csv: %v\n", err)
		os.Exit(1)
	}

	chartDir := filepath.Join(*outDir, "charts")
	if err := experiment.ComparisonCharts(results, chartDir); err != nil {
		fmt.Fprintf(os.Stderr, "error rendering charts: %v\n", err)
		os.Exit(1)
	}

	logger.Infof("direct comparison complete, results saved to %s", csvPath)
}

func parseWalls(spec string) ([]int, error) {
	var out []int
	for _, raw := range strings.Split(spec, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("bad wall count %q: %w", raw, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("wall count must be non-negative, got %d", n)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no wall counts given")
	}
	return out, nil
}
