// Package main provides a performance benchmarking tool for the Passage CLI.
// It measures end-to-end `passage assess` latency for every preset policy against each
// local store backend, treating the first run as cold and averaging the rest as warm,
// and writes a CSV for performance tracking.
//
// Prerequisites:
// - passage binary installed and available in PATH
//
// Usage: go run benchmark/main.go [runs]
//
//	runs: number of runs per policy and backend (default 5)
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// BenchmarkResult holds the cold time and the average of warm runs for one policy and backend.
type BenchmarkResult struct {
	Policy   string
	Backend  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Runs        int
	Timeout     time.Duration
	Policies    []string
	Backends    []string
	Observation []string
	WorkDir     string
}

func main() {
	runs := 5
	if len(os.Args) == 2 {
		n, err := strconv.Atoi(os.Args[1])
		if err != nil || n < 2 {
			fmt.Printf("Usage: %s [runs >= 2]\n", os.Args[0])
			os.Exit(1)
		}
		runs = n
	}

	if _, err := exec.LookPath("passage"); err != nil {
		fmt.Printf("Prerequisites check failed: passage binary not found in PATH\n")
		os.Exit(1)
	}

	workDir, err := os.MkdirTemp("", "passage-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create work dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(workDir) }()

	config := BenchmarkConfig{
		Runs:     runs,
		Timeout:  30 * time.Second,
		Policies: []string{"frailty-logistic", "hospitalization-threshold", "cardiometabolic-logistic", "healthspan-index"},
		Backends: []string{"none", "sqlite", "csv"},
		Observation: []string{
			"--age", "81", "--sex", "female", "--gait-speed", "0.7", "--grip-strength", "17",
			"--adl-score", "4", "--tug-seconds", "14", "--frailty-count", "3", "--comorbidity", "Multiple",
			"--disease-count", "4", "--bmi", "31", "--systolic-bp", "152", "--hba1c", "7.2", "--ldl", "165",
			"--egfr", "52", "--moca", "23", "--phq9", "11", "--gad7", "8", "--abnormal-liver", "no",
			"--living-alone", "yes", "--fall-history", "yes", "--exercise", "Occasional", "--smoking", "no",
			"--quality-of-life", "55", "--red-flags", "1",
		},
		WorkDir: workDir,
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes every policy against every backend.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d policies, %d backends, %d runs, %v timeout\n",
		len(config.Policies), len(config.Backends), config.Runs, config.Timeout)

	for _, backend := range config.Backends {
		for _, policy := range config.Policies {
			fmt.Printf("Benchmarking %s on %s\n", policy, backend)
			cold, warm := runBenchmark(config, policy, backend)

			result := BenchmarkResult{Policy: policy, Backend: backend, ColdTime: "TIMEOUT", WarmTime: "TIMEOUT"}
			if cold > 0 {
				result.ColdTime = fmt.Sprintf("%.3fs", cold)
			}
			if len(warm) > 0 {
				var sum float64
				for _, t := range warm {
					sum += t
				}
				result.WarmTime = fmt.Sprintf("%.3fs", sum/float64(len(warm)))
			}
			fmt.Printf("  Cold time: %s, Warm average: %s\n", result.ColdTime, result.WarmTime)
			results = append(results, result)
		}
	}

	return results
}

// runBenchmark runs passage assess repeatedly and returns the cold time and the warm times.
func runBenchmark(config BenchmarkConfig, policy, backend string) (coldTime float64, warmTimes []float64) {
	args := []string{"assess", "--policy", policy, "--store-backend", backend, "--output", "json"}
	switch backend {
	case "sqlite":
		args = append(args, "--save", "--patient-id", "bench", "--store-db-connect", filepath.Join(config.WorkDir, "bench.db"))
	case "csv":
		args = append(args, "--save", "--patient-id", "bench", "--store-db-connect", filepath.Join(config.WorkDir, "bench.csv"))
	}
	args = append(args, config.Observation...)

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("passage", args...)
		cmd.Dir = config.WorkDir
		cmd.Env = append(os.Environ(), "HOME="+config.WorkDir)

		done := make(chan error, 1)
		go func() {
			_, err := cmd.Output()
			done <- err
		}()

		select {
		case err := <-done:
			if err == nil {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("passage_benchmark_%s.csv", timestamp))

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
	if err := writer.Write([]string{"policy", "backend", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Policy, result.Backend, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final results grouped by backend
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	current := ""
	for _, result := range results {
		if result.Backend != current {
			current = result.Backend
			fmt.Printf("Backend %s:\n", current)
		}
		fmt.Printf("  %-26s: Cold: %s, Warm: %s\n", result.Policy, result.ColdTime, result.WarmTime)
	}
}
