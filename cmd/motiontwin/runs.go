package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/storage"
	"github.com/san-kum/motiontwin/internal/twin"
)

// runStore opens the data directory without building a planner.
func runStore() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return storage.New(cfg.DataDir), nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFROM\tTO\tSHAPE\tDURATION\tQUALITY\tOPT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.3fs\t%.1f\t%t\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.From,
			run.To,
			run.Shape,
			run.Duration,
			run.Quality.Overall,
			run.Optimized,
		)
	}

	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	q := meta.Quality
	lines := []string{
		cyan.Bold(true).Render(meta.ID),
		row("time", meta.Timestamp.Format("2006-01-02 15:04:05")),
		row("move", fmt.Sprintf("%s -> %s", meta.From, meta.To)),
		row("profile", fmt.Sprintf("%s, %.3fs", meta.Shape, meta.Duration)),
		row("twin", fmt.Sprintf("%s, step %gs", meta.Integrator, meta.Step)),
		row("quality", scoreStyle(q.Overall).Render(fmt.Sprintf("%.1f", q.Overall))),
		row("tracking", fmt.Sprintf("%.1f", q.Tracking)),
		row("vibration", fmt.Sprintf("%.1f", q.Vibration)),
		row("rms error", fmt.Sprintf("%.4f mm", q.RMSError)),
		row("max error", fmt.Sprintf("%.4f mm", q.MaxError)),
		row("excitation", fmt.Sprintf("x %.4g, y %.4g", q.Excitation.X, q.Excitation.Y)),
	}
	if meta.Warning != "" {
		lines = append(lines, yellow.Render(meta.Warning))
	}
	names := make([]string, 0, len(meta.Metrics))
	for name := range meta.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		lines = append(lines, row(name, fmt.Sprintf("%.4g", meta.Metrics[name])))
	}
	fmt.Println(box.Render(strings.Join(lines, "\n")))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if tr.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	axis := dominantAxis(meta.From, meta.To)
	name := physics.AxisName(axis)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", tr.Len())

	target, actual, errs := series(tr, axis)
	fmt.Println(asciigraph.PlotMany([][]float64{target, actual},
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
		asciigraph.Caption(name+" target (blue) vs actual (green), mm"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(errs,
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption(name+" tracking error, mm"),
	))
	if len(tr.Acceleration) == 0 {
		return nil
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(tr.AccelerationOf(axis),
		asciigraph.Height(8),
		asciigraph.Width(80),
		asciigraph.Caption(name+" acceleration, mm/s²"),
	))
	return nil
}

func series(tr *twin.Trace, axis int) (target, actual, errs []float64) {
	target = make([]float64, tr.Len())
	actual = make([]float64, tr.Len())
	errs = make([]float64, tr.Len())
	for i, s := range tr.Samples {
		target[i] = s.Target[axis]
		actual[i] = s.Actual[axis]
		errs[i] = s.Error[axis]
	}
	return target, actual, errs
}

// dominantAxis picks the axis with the largest displacement.
func dominantAxis(from, to dynamo.Vec3) int {
	best, bestAbs := physics.X, -1.0
	for i := range from {
		d := to[i] - from[i]
		if d < 0 {
			d = -d
		}
		if d > bestAbs {
			best, bestAbs = i, d
		}
	}
	return best
}

func exportRun(cmd *cobra.Command, args []string) error {
	st, err := runStore()
	if err != nil {
		return err
	}
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}
	if err := st.ExportFile(out, args[0]); err != nil {
		return err
	}
	fmt.Println(dim.Render("exported: " + out))
	return nil
}
