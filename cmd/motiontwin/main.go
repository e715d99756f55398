package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/motiontwin/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	noSave     bool
	jsonOut    bool
	addr       string
	pathLimit  int
	serveLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "motiontwin",
		Short:         "motion planning with a digital twin of the printer carriage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "data directory (default from config)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	planCmd := &cobra.Command{
		Use:   "plan [x0,y0,z0] [x1,y1,z1]",
		Short: "plan and simulate one move",
		Args:  cobra.ExactArgs(2),
		RunE:  planMove,
	}
	planCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	planCmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as json")

	pathCmd := &cobra.Command{
		Use:   "path [x,y,z]...",
		Short: "plan consecutive moves through the points",
		Args:  cobra.MinimumNArgs(2),
		RunE:  planPath,
	}
	pathCmd.Flags().IntVar(&pathLimit, "parallel", 1, "segments planned concurrently")
	pathCmd.Flags().BoolVar(&jsonOut, "json", false, "print the result as json")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "run the demo move sequence",
		RunE:  runDemo,
	}
	demoCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the runs")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "search velocity and acceleration limits for the best demo quality",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Slice("velocities", []float64{100, 150, 200, 250, 300}, "max velocity candidates (mm/s)")
	sweepCmd.Flags().Float64Slice("accelerations", []float64{1000, 2000, 3000, 5000}, "max acceleration candidates (mm/s^2)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the planning api",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&serveLimit, "parallel", 4, "segments planned concurrently per path request")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate [params.yaml]",
		Short: "check a calibration payload and turn it into a config",
		Args:  cobra.ExactArgs(1),
		RunE:  calibrate,
	}
	calibrateCmd.Flags().StringP("out", "o", "", "write the resulting config here")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "show a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot target, actual position and error of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run with its trace as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				fmt.Println(name)
			}
		},
	}

	rootCmd.AddCommand(planCmd, pathCmd, demoCmd, sweepCmd, serveCmd, calibrateCmd,
		listCmd, showCmd, plotCmd, exportCmd, presetsCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("error: "+err.Error()))
		stop()
		os.Exit(1)
	}
}
