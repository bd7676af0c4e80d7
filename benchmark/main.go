// Package main provides a performance benchmarking tool for the locscope CLI.
// It generates synthetic loc.csv files of increasing size, then measures each
// command with the ingest cache disabled and enabled. The first cached run is
// reported as cold and the remaining cached runs are averaged as warm.
//
// Prerequisites:
// - locscope binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory for the generated datasets (default: a temp dir)
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand/v2"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Dataset     string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Sizes       map[string]int // dataset name to line count
	Order       []string
	Commands    map[string][]string
}

func main() {
	workDir := ""
	if len(os.Args) == 2 {
		workDir = os.Args[1]
	} else {
		dir, err := os.MkdirTemp("", "locscope-bench-*")
		if err != nil {
			fmt.Printf("Failed to create work dir: %v\n", err)
			os.Exit(1)
		}
		workDir = dir
	}

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     2 * time.Minute,
		NoCacheRuns: 3,
		CacheRuns:   4,
		Sizes: map[string]int{
			"small":  10_000,
			"medium": 250_000,
			"large":  2_000_000,
		},
		Order: []string{"small", "medium", "large"},
		Commands: map[string][]string{
			"stats":   {"stats"},
			"commits": {"commits", "--cutoff", "50", "--output", "csv"},
			"select":  {"select", "--rect", "100,100,700,400", "--output", "json"},
		},
	}

	if _, err := exec.LookPath("locscope"); err != nil {
		fmt.Printf("Prerequisites check failed: locscope binary not found in PATH\n")
		os.Exit(1)
	}

	for _, name := range config.Order {
		path := datasetPath(config, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		fmt.Printf("Generating %s dataset (%d lines)\n", name, config.Sizes[name])
		if err := generateDataset(path, config.Sizes[name]); err != nil {
			fmt.Printf("Failed to generate %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

func datasetPath(config BenchmarkConfig, name string) string {
	return filepath.Join(config.WorkDir, name+".loc.csv")
}

// generateDataset writes a loc.csv with roughly 40 lines per commit spread over a year.
func generateDataset(path string, lines int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"file", "line", "type", "commit", "author", "date", "time", "timezone", "datetime", "depth", "length"}); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(1, 2))
	types := []string{"go", "js", "css", "html", "md"}
	authors := []string{"Ada", "Grace", "Linus", "Barbara", "Ken"}
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var commitID string
	var when time.Time
	var author string
	for i := range lines {
		if i%40 == 0 {
			commitID = fmt.Sprintf("%08x", rng.Uint32())
			when = start.Add(time.Duration(rng.IntN(365*24*60)) * time.Minute)
			author = authors[rng.IntN(len(authors))]
		}
		row := []string{
			fmt.Sprintf("src/file%d.%s", i%500, types[i%len(types)]),
			strconv.Itoa(i%300 + 1),
			types[i%len(types)],
			commitID,
			author,
			when.Format("2006-01-02"),
			when.Format("15:04:05"),
			"+00:00",
			when.Format(time.RFC3339),
			strconv.Itoa(rng.IntN(6)),
			strconv.Itoa(rng.IntN(120)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// runBenchmarks executes every command against every dataset
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d datasets, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Order), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, name := range config.Order {
		fmt.Printf("Benchmarking %s\n", name)
		for _, command := range []string{"stats", "commits", "select"} {
			results = append(results, runBenchmarkSuite(config, name, command))
		}
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, dataset, command string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", command, dataset)
	cacheDB := filepath.Join(config.WorkDir, dataset+".cache.db")
	_ = os.Remove(cacheDB)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		times := runBenchmark(config, dataset, command, cacheBackend, cacheDB, numRuns)
		if len(times) == 0 {
			return 0, "FAILED"
		}
		if cacheBackend != "none" {
			coldTime, times = times[0], times[1:]
		}
		if len(times) == 0 {
			return coldTime, "n/a"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return coldTime, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "FAILED"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Dataset:     dataset,
		Command:     command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a locscope command numRuns times and returns the successful durations in order.
func runBenchmark(config BenchmarkConfig, dataset, command, cacheBackend, cacheDB string, numRuns int) []float64 {
	args := append([]string{}, config.Commands[command]...)
	args = append(args, datasetPath(config, dataset), "--cache-backend", cacheBackend, "--history-backend", "none")
	if cacheBackend == "sqlite" {
		args = append(args, "--cache-db-connect", cacheDB)
	}

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		cmd := exec.CommandContext(ctx, "locscope", args...)
		start := time.Now()
		err := cmd.Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil {
			times = append(times, elapsed)
		}
	}
	return times
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/locscope_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results grouped by command
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"stats", "commits", "select"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Dataset, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
	fmt.Printf("Datasets kept in %s\n", config.WorkDir)
}
