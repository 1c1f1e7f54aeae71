package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/ygrebnov/taskpool/internal/workload"
)

var (
	bold  = color.New(color.Bold)
	cyan  = color.New(color.FgCyan, color.Bold)
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
)

func printHeader(cfg workload.Config) {
	workers := fmt.Sprint(cfg.Workers)
	if cfg.Workers == 0 {
		workers = fmt.Sprintf("%d (GOMAXPROCS)", runtime.GOMAXPROCS(0))
	}

	_, _ = cyan.Println(strings.Repeat("=", 60))
	_, _ = cyan.Println("  TASKPOOL WORKLOAD")
	_, _ = cyan.Println(strings.Repeat("=", 60))
	_, _ = bold.Printf("  workers: %s  tasks: %d  sleep: %s  producers: %d\n",
		workers, cfg.Tasks, cfg.Sleep, cfg.Producers)
	if cfg.Rate > 0 {
		_, _ = bold.Printf("  rate limit: %.1f/s (burst %d)\n", cfg.Rate, cfg.Burst)
	}
	fmt.Println()
}

func renderReport(w io.Writer, rep workload.Report) error {
	table := tablewriter.NewWriter(w)
	table.Header("Workers", "Tasks", "OK", "Failed", "Wall Time", "Serial Estimate", "Speedup")

	if err := table.Append(
		fmt.Sprint(rep.Workers),
		fmt.Sprint(rep.Tasks),
		green.Sprint(rep.OK),
		failedCell(rep.Failed),
		rep.Wall.Round(time.Millisecond).String(),
		rep.Serial.Round(time.Millisecond).String(),
		fmt.Sprintf("%.2fx", rep.Speedup()),
	); err != nil {
		return err
	}
	return table.Render()
}

func failedCell(n int) string {
	if n == 0 {
		return fmt.Sprint(n)
	}
	return red.Sprint(n)
}

func dumpMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	_, _ = bold.Fprintln(w, "METRICS")
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
