package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/skeldyn/internal/config"
	"github.com/san-kum/skeldyn/internal/control"
	"github.com/san-kum/skeldyn/internal/dynamics"
	"github.com/san-kum/skeldyn/internal/export"
	"github.com/san-kum/skeldyn/internal/integrators"
	"github.com/san-kum/skeldyn/internal/metrics"
	"github.com/san-kum/skeldyn/internal/sim"
	"github.com/san-kum/skeldyn/internal/storage"
	"github.com/san-kum/skeldyn/internal/tui"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	duration   float64
	seed       int64
	integrator string
	controller string
	kp         float64
	ki         float64
	kd         float64
	// Phase plot axes
	xAxis int
	yAxis int
	// SVG output
	svgOut   string
	svgWidth int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "skeldyn",
		Short: "articulated rigid body dynamics lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".skeldyn", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [scene]",
		Short: "run simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	runCmd.Flags().Float64Var(&duration, "time", 0, "duration override")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed override")
	runCmd.Flags().StringVar(&integrator, "integrator", "", "integrator override")
	runCmd.Flags().StringVar(&controller, "controller", "", "controller override")
	runCmd.Flags().Float64Var(&kp, "kp", 0, "pd kp override")
	runCmd.Flags().Float64Var(&ki, "ki", 0, "pd ki override")
	runCmd.Flags().Float64Var(&kd, "kd", 0, "pd kd override")

	liveCmd := &cobra.Command{
		Use:   "live [scene]",
		Short: "run simulation with live terminal visualization",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")

	describeCmd := &cobra.Command{
		Use:   "describe [scene]",
		Short: "print skeleton structure and mass properties",
		Args:  cobra.MaximumNArgs(1),
		RunE:  describeScene,
	}
	describeCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				skel, err := config.BuildSkeleton(cfg)
				if err != nil {
					return err
				}
				fmt.Printf("  %-16s %d bodies, %d dofs\n", name, skel.NumBodies(), skel.NumDofs())
			}
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().IntVar(&xAxis, "x-axis", 0, "state index for x-axis")
	phaseCmd.Flags().IntVar(&yAxis, "y-axis", 1, "state index for y-axis")
	phaseCmd.Flags().StringVar(&svgOut, "svg", "", "write trajectory SVG to file")
	phaseCmd.Flags().IntVar(&svgWidth, "svg-width", 600, "svg width in pixels")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	compareCmd := &cobra.Command{
		Use:   "compare [scene] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same scene",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	compareCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")
	compareCmd.Flags().Float64Var(&dt, "dt", 0, "timestep override")
	compareCmd.Flags().Float64Var(&duration, "time", 0, "duration override")

	benchCmd := &cobra.Command{
		Use:   "bench [scene]",
		Short: "benchmark forward dynamics and mass matrix assembly",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchScene,
	}
	benchCmd.Flags().StringVar(&configFile, "config", "", "scene config file (yaml)")

	rootCmd.AddCommand(runCmd, liveCmd, describeCmd, presetsCmd, listCmd, plotCmd, phaseCmd, exportCmd, exportCSVCmd, compareCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolveConfig loads the scene from --config or falls back to a named
// preset (the first positional arg, default "pendulum"), then applies
// any CLI flag overrides.
func resolveConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	var cfg *config.Config

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	} else {
		name := "pendulum"
		if len(args) > 0 {
			name = args[0]
		}
		cfg = config.GetPreset(name)
		if cfg == nil {
			return nil, fmt.Errorf("unknown scene: %s (available: %v)", name, config.ListPresets())
		}
	}

	if cmd.Flags().Changed("dt") {
		cfg.Run.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		cfg.Run.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Run.Seed = seed
	}
	if cmd.Flags().Changed("integrator") {
		cfg.Run.Integrator = integrator
	}
	if cmd.Flags().Changed("controller") {
		cfg.Run.Controller = controller
	}
	if cmd.Flags().Changed("kp") {
		cfg.Run.ControllerParams.Kp = kp
	}
	if cmd.Flags().Changed("ki") {
		cfg.Run.ControllerParams.Ki = ki
	}
	if cmd.Flags().Changed("kd") {
		cfg.Run.ControllerParams.Kd = kd
	}

	return cfg, nil
}

func getIntegrator(name string) (sim.Integrator, error) {
	switch name {
	case "euler":
		return integrators.NewEuler(), nil
	case "semi_implicit", "":
		return integrators.NewSemiImplicit(), nil
	case "rk4":
		return integrators.NewRK4(), nil
	case "rk45":
		return integrators.NewRK45(), nil
	case "verlet":
		return integrators.NewVerlet(), nil
	case "leapfrog":
		return integrators.NewLeapfrog(), nil
	default:
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
}

func getController(name string, dyn *sim.SkeletonDynamics, params config.ControllerConfig) (sim.Controller, error) {
	n := dyn.ControlDim()

	targets := params.Targets
	if len(targets) == 0 {
		targets = make([]float64, n)
	}
	if len(targets) != n {
		return nil, fmt.Errorf("controller targets length %d, skeleton has %d dofs", len(targets), n)
	}

	switch name {
	case "none", "":
		return control.NewNone(n), nil
	case "pd":
		return control.NewPD(params.Kp, params.Kd, targets), nil
	case "pid":
		return control.NewPID(params.Kp, params.Ki, params.Kd, targets), nil
	case "gravity_comp":
		return control.NewGravityComp(dyn), nil
	default:
		return nil, fmt.Errorf("unknown controller: %s", name)
	}
}

func setupScene(cfg *config.Config) (*dynamics.Skeleton, *sim.SkeletonDynamics, error) {
	skel, err := config.BuildSkeleton(cfg)
	if err != nil {
		return nil, nil, err
	}
	return skel, sim.NewSkeletonDynamics(skel), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	skel, dyn, err := setupScene(cfg)
	if err != nil {
		return err
	}

	integ, err := getIntegrator(cfg.Run.Integrator)
	if err != nil {
		return err
	}

	ctrl, err := getController(cfg.Run.Controller, dyn, cfg.Run.ControllerParams)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	s := sim.New(dyn, integ, ctrl)
	s.AddMetric(metrics.NewEnergy(dyn))
	s.AddMetric(metrics.NewEnergyDrift(dyn))
	s.AddMetric(metrics.NewControlEffort())
	s.AddMetric(metrics.NewMomentumDrift(dyn))

	runCfg := sim.DefaultConfig()
	if cfg.Run.Dt > 0 {
		runCfg.Dt = cfg.Run.Dt
	}
	if cfg.Run.Duration > 0 {
		runCfg.Duration = cfg.Run.Duration
	}
	runCfg.Seed = cfg.Run.Seed

	fmt.Printf("running %s (%d bodies, %d dofs)...\n", cfg.Name, skel.NumBodies(), skel.NumDofs())
	start := time.Now()

	result, err := s.Run(context.Background(), dyn.StateOf(), runCfg)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(storage.RunInfo{
		Scene:      cfg.Name,
		NumDofs:    skel.NumDofs(),
		Dt:         runCfg.Dt,
		Duration:   runCfg.Duration,
		Seed:       runCfg.Seed,
		Integrator: cfg.Run.Integrator,
		Controller: cfg.Run.Controller,
	}, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%d steps)\n", elapsed, result.StepsTaken)
	fmt.Printf("run id: %s\n", runID)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	skel, _, err := setupScene(cfg)
	if err != nil {
		return err
	}
	if cfg.Run.Dt > 0 {
		skel.SetTimeStep(cfg.Run.Dt)
	}

	return tui.Run(skel, cfg.Name)
}

func describeScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	skel, _, err := setupScene(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("scene: %s\n", skel.Name())
	fmt.Printf("bodies: %d, dofs: %d, total mass: %.3f kg\n", skel.NumBodies(), skel.NumDofs(), skel.Mass())
	g := skel.Gravity()
	fmt.Printf("gravity: [%.2f %.2f %.2f]\n\n", g.X(), g.Y(), g.Z())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BODY\tPARENT\tJOINT\tDOFS\tMASS\tSHAPES")
	for i := 0; i < skel.NumBodies(); i++ {
		body := skel.Body(i)
		parentName := "-"
		if body.Parent() != nil {
			parentName = body.Parent().Name()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.3f\t%d\n",
			body.Name(),
			parentName,
			body.ParentJoint().Name(),
			body.ParentJoint().NumDofs(),
			body.Mass(),
			len(body.UniqueShapes()),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println("\nmass matrix:")
	m := skel.MassMatrix()
	n := skel.NumDofs()
	for i := 0; i < n; i++ {
		fmt.Print("  ")
		for j := 0; j < n; j++ {
			fmt.Printf("%10.4f", m.At(i, j))
		}
		fmt.Println()
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENE\tDOFS\tTIME\tDURATION\tDT\tINTEG\tCTRL\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.2e\n",
			run.ID,
			run.Scene,
			run.NumDofs,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Integrator,
			run.Controller,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scene: %s (%d dofs)\n", meta.Scene, meta.NumDofs)
	fmt.Printf("samples: %d\n\n", len(states))

	n := meta.NumDofs
	numPlots := n
	maxPlots := 4
	if numPlots > maxPlots {
		numPlots = maxPlots
	}

	for varIdx := 0; varIdx < numPlots; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("q%d vs time", varIdx)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}
	if len(states[0]) <= xAxis || len(states[0]) <= yAxis {
		return fmt.Errorf("state dimension too small for selected axes")
	}

	points := make([]export.Point, len(states))
	for i := range states {
		points[i] = export.Point{X: states[i][xAxis], Y: states[i][yAxis]}
	}

	if svgOut != "" {
		svg := export.TrajectoryToSVG(points, svgWidth, svgWidth*2/3, "#00ff88")
		if err := os.WriteFile(svgOut, []byte(svg), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgOut)
		return nil
	}

	fmt.Printf("phase space plot: %s\n", meta.ID)
	fmt.Printf("x-axis: x%d, y-axis: x%d\n\n", xAxis, yAxis)

	canvas := tui.NewCanvas(40, 12)
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}

	subW := float64(canvas.Width*2 - 1)
	subH := float64(canvas.Height*4 - 1)
	for _, p := range points {
		px := int((p.X - minX) / rangeX * subW)
		py := int(subH - (p.Y-minY)/rangeY*subH)
		canvas.Set(px, py)
	}

	fmt.Println(canvas.String())
	fmt.Printf("x: [%.3f, %.3f]  y: [%.3f, %.3f]\n", minX, maxX, minY, maxY)

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	states, times, err := st.LoadStates(args[0])
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"time"}
	for i := range states[0] {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range states {
		row := []string{strconv.FormatFloat(times[i], 'f', 6, 64)}
		for _, val := range states[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	names := args[1:]

	cfg, err := resolveConfig(cmd, args[:1])
	if err != nil {
		return err
	}

	runCfg := sim.DefaultConfig()
	if cfg.Run.Dt > 0 {
		runCfg.Dt = cfg.Run.Dt
	}
	if cfg.Run.Duration > 0 {
		runCfg.Duration = cfg.Run.Duration
	}
	if cmd.Flags().Changed("dt") {
		runCfg.Dt = dt
	}
	if cmd.Flags().Changed("time") {
		runCfg.Duration = duration
	}

	fmt.Printf("comparing integrators for %s (dt=%.4f, duration=%.1fs)\n\n", cfg.Name, runCfg.Dt, runCfg.Duration)
	fmt.Printf("%-14s  %-12s  %-12s  %-12s\n", "integrator", "final_q0", "energy_drift", "time_ms")
	fmt.Println(strings.Repeat("-", 56))

	for _, name := range names {
		integ, err := getIntegrator(name)
		if err != nil {
			fmt.Printf("%-14s  error: %v\n", name, err)
			continue
		}

		// Skeletons hold mutable state, so each run gets a fresh build.
		_, dyn, err := setupScene(cfg)
		if err != nil {
			return err
		}

		s := sim.New(dyn, integ, control.NewNone(dyn.ControlDim()))

		start := time.Now()
		result, err := s.Run(context.Background(), dyn.StateOf(), runCfg)
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("%-14s  error: %v\n", name, err)
			continue
		}

		finalQ0 := 0.0
		if len(result.States) > 0 && len(result.States[len(result.States)-1]) > 0 {
			finalQ0 = result.States[len(result.States)-1][0]
		}

		fmt.Printf("%-14s  %12.6f  %12.2e  %12.2f\n", name, finalQ0, result.EnergyDrift, float64(elapsed.Microseconds())/1000)
	}

	return nil
}

func benchScene(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, args)
	if err != nil {
		return err
	}

	skel, _, err := setupScene(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s (%d dofs)\n\n", cfg.Name, skel.NumDofs())

	const iters = 10000
	start := time.Now()
	for i := 0; i < iters; i++ {
		skel.ComputeForwardDynamics()
	}
	fdElapsed := time.Since(start)

	start = time.Now()
	for i := 0; i < iters; i++ {
		skel.MassMatrix()
	}
	mmElapsed := time.Since(start)

	start = time.Now()
	for i := 0; i < iters; i++ {
		skel.ComputeInverseDynamics(false)
	}
	idElapsed := time.Since(start)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "OPERATION\tITERS\tTOTAL\tPER CALL")
	fmt.Fprintf(w, "forward dynamics\t%d\t%v\t%v\n", iters, fdElapsed, fdElapsed/iters)
	fmt.Fprintf(w, "mass matrix\t%d\t%v\t%v\n", iters, mmElapsed, mmElapsed/iters)
	fmt.Fprintf(w, "inverse dynamics\t%d\t%v\t%v\n", iters, idElapsed, idElapsed/iters)
	return w.Flush()
}
