package main

import (
	"fmt"
	"strings"

	"gosem/domain/sem"
)

func printOuterModel(results []sem.OuterModelResult) {
	if len(results) == 0 {
		return
	}
	fmt.Println("=== Outer Model (reliability & convergent validity) ===")
	fmt.Printf("%-8s %-6s %-6s %8s %8s %8s\n", "code", "items", "n_obs", "alpha", "CR", "AVE")
	for _, r := range results {
		fmt.Printf("%-8s %-6d %-6d %8.3f %8.3f %8.3f\n",
			r.Construct, r.NIndicators(), r.Observations, r.Alpha, r.CR, r.AVE)
	}
	fmt.Println()
}

func printPathResults(paths []sem.PathResult) {
	if len(paths) == 0 {
		return
	}
	fmt.Println("=== Structural Paths (OLS) ===")
	for _, p := range paths {
		fmt.Printf("%s ~ %s  (n=%d, R2=%.3f)\n",
			p.Target, strings.Join(p.Predictors, " + "), p.Observations, p.R2)
		fmt.Printf("  intercept: %.4f\n", p.Intercept)
		for _, pred := range p.Predictors {
			fmt.Printf("  %-12s %.4f\n", pred, p.Coefficients[pred])
		}
	}
	fmt.Println()
}

func printCorrelations(m *sem.CorrelationMatrix) {
	if m == nil || len(m.Columns) == 0 {
		return
	}
	fmt.Println("=== Correlation Matrix ===")
	fmt.Printf("%-14s", "")
	for _, c := range m.Columns {
		fmt.Printf(" %9s", truncate(c, 9))
	}
	fmt.Println()
	for i, row := range m.Values {
		fmt.Printf("%-14s", truncate(m.Columns[i], 14))
		for _, v := range row {
			fmt.Printf(" %9.3f", v)
		}
		fmt.Println()
	}
	fmt.Println()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
