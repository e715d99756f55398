package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/motiontwin/internal/config"
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
)

// calibrate reads a flat calibration payload, reports the plausibility
// checks and optionally writes a config using the calibrated model.
func calibrate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	var params map[string]any
	if err := yaml.Unmarshal(data, &params); err != nil {
		return fmt.Errorf("%w: %s: %w", dynamo.ErrConfig, args[0], err)
	}

	cal, err := physics.DecodeCalibration(params)
	if err != nil {
		return err
	}

	checks := cal.Checks()
	names := make([]string, 0, len(checks))
	for name := range checks {
		if name != "all_checks_passed" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		mark := green.Render("ok  ")
		if !checks[name] {
			mark = red.Render("FAIL")
		}
		fmt.Printf("%s %s\n", mark, name)
	}

	model, err := cal.Model()
	if err != nil {
		return err
	}
	for i := range model.Axes {
		fmt.Println(row("axis "+physics.AxisName(i), fmt.Sprintf("natural frequency %.1f Hz", model.NaturalFrequency(i))))
	}
	if !checks["all_checks_passed"] {
		fmt.Println(yellow.Render("calibration failed plausibility checks"))
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return nil
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Model = model
	if err := config.Save(out, cfg); err != nil {
		return err
	}
	fmt.Println(dim.Render("config written: " + out))
	return nil
}
