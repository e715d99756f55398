package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/planner"
)

// demoMoves is the demo sequence: a fast move, a turn, a diagonal and the
// return to the origin.
var demoMoves = [][2]dynamo.Vec3{
	{{0, 0, 0}, {100, 0, 0}},
	{{100, 0, 0}, {100, 50, 0}},
	{{100, 50, 0}, {50, 25, 0}},
	{{50, 25, 0}, {0, 0, 0}},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) save(name string, res *planner.Result) {
	if noSave {
		return
	}
	if err := a.runs.Init(); err != nil {
		a.log.Warn("cannot create data directory", "dir", a.cfg.DataDir, "error", err)
		return
	}
	runID, err := a.runs.Save(name, a.cfg.Twin.Integrator, a.cfg.Twin.Step, res)
	if err != nil {
		a.log.Warn("run not saved", "error", err)
		return
	}
	fmt.Println(dim.Render("saved: " + runID))
}

func planMove(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.planner.Plan(cmd.Context(), points[0], points[1])
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(res)
	}
	fmt.Println(renderResult("move", res))
	a.save("plan", res)
	return nil
}

func planPath(cmd *cobra.Command, args []string) error {
	points, err := parsePoints(args)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	var path *planner.PathResult
	if pathLimit > 1 {
		path, err = a.planner.PlanPathParallel(cmd.Context(), points, pathLimit)
	} else {
		path, err = a.planner.PlanPath(cmd.Context(), points)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(path)
	}
	fmt.Println(renderPath(path))
	return nil
}

func runDemo(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println(bold.Render("demo sequence"))
	for i, mv := range demoMoves {
		res, err := a.planner.Plan(cmd.Context(), mv[0], mv[1])
		if err != nil {
			return fmt.Errorf("movement %d: %w", i+1, err)
		}
		fmt.Println(renderResult(fmt.Sprintf("movement %d", i+1), res))
		a.save(fmt.Sprintf("demo%d", i+1), res)
	}
	fmt.Println(green.Render("demo complete"))
	return nil
}

func demoPath() []dynamo.Vec3 {
	points := []dynamo.Vec3{demoMoves[0][0]}
	for _, mv := range demoMoves {
		points = append(points, mv[1])
	}
	return points
}

func runSweep(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	velocities, _ := cmd.Flags().GetFloat64Slice("velocities")
	accels, _ := cmd.Flags().GetFloat64Slice("accelerations")

	grid := optim.NewGridSearch(
		[]string{"max_velocity", "max_acceleration"},
		[][]float64{velocities, accels},
	)
	fmt.Printf("sweeping %d limit combinations over the demo path\n", grid.Size())

	path := demoPath()
	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		c := a.cfg.Constraints
		c.MaxVelocity = params["max_velocity"]
		c.MaxAcceleration = params["max_acceleration"]

		opt, err := optim.New(a.cfg.Optimizer, optim.WithLogger(a.log))
		if err != nil {
			return 0, err
		}
		p, err := planner.New(a.cfg.Model, c,
			planner.WithOptimizer(opt),
			planner.WithLogger(a.log),
			planner.WithSimulation(a.cfg.Twin.Step, a.cfg.Twin.Integrator),
		)
		if err != nil {
			return 0, err
		}
		res, err := p.PlanPathParallel(ctx, path, len(path)-1)
		if err != nil {
			return 0, err
		}
		a.log.Debug("sweep", "v", c.MaxVelocity, "a", c.MaxAcceleration, "average", res.Average)
		return -res.Average, nil
	}

	best, score, err := grid.Search(cmd.Context(), objective)
	if err != nil {
		return err
	}

	fmt.Println(box.Render(
		bold.Render("best limits") + "\n" +
			row("velocity", fmt.Sprintf("%.0f mm/s", best["max_velocity"])) + "\n" +
			row("accel", fmt.Sprintf("%.0f mm/s²", best["max_acceleration"])) + "\n" +
			row("quality", scoreStyle(-score).Render(fmt.Sprintf("%.1f", -score))),
	))
	return nil
}
