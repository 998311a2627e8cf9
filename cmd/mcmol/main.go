package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mcmol/internal/config"
	"github.com/san-kum/mcmol/internal/coords"
	"github.com/san-kum/mcmol/internal/experiment"
	"github.com/san-kum/mcmol/internal/export"
	"github.com/san-kum/mcmol/internal/move"
	"github.com/san-kum/mcmol/internal/sim"
	"github.com/san-kum/mcmol/internal/storage"
	"github.com/san-kum/mcmol/internal/stream"
	"github.com/san-kum/mcmol/internal/tui"
)

var (
	dataDir     string
	configFile  string
	sweeps      int
	sampleEvery int
	seed        int64
	live        bool
	serveAddr   string
	listenAddr  string
	outFile     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "mcmol",
		Short: "metropolis monte carlo molecular simulation",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mcmol", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&live, "live", false, "live terminal dashboard")
	runCmd.Flags().StringVar(&serveAddr, "serve", "", "stream progress over websocket on this address")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run a simulation and stream progress over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			serveAddr = listenAddr
			return runSimulation(cmd, args)
		},
	}
	addRunFlags(serveCmd)
	serveCmd.Flags().StringVar(&listenAddr, "addr", ":8765", "listen address")

	watchCmd := &cobra.Command{
		Use:   "watch [url]",
		Short: "follow a streaming simulation (ws://host:port/ws)",
		Args:  cobra.ExactArgs(1),
		RunE:  watchRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy trace of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	coordsCmd := &cobra.Command{
		Use:   "coords [run_id]",
		Short: "plot the coordinate traces of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotCoords,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportPlotCmd := &cobra.Command{
		Use:   "export-plot [run_id]",
		Short: "render the energy trace to an image file",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPlot,
	}
	exportPlotCmd.Flags().StringVar(&outFile, "out", "trace.svg", "output file (svg, png or pdf)")

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a default config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "mcmol.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Save(path, config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, serveCmd, watchCmd, listCmd, plotCmd, coordsCmd, exportCmd, exportPlotCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().IntVar(&sweeps, "sweeps", 0, "number of sweeps (overrides config)")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "sweeps between samples (overrides config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (overrides config)")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if cmd.Flags().Changed("sweeps") {
		cfg.Sampling.Sweeps = sweeps
	}
	if cmd.Flags().Changed("sample-every") {
		cfg.Sampling.SampleEvery = sampleEvery
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.Build(cfg)
	if err != nil {
		return err
	}

	sampler, err := sim.New(exp.Spc, exp.H, exp.Moves)
	if err != nil {
		return err
	}

	if serveAddr != "" {
		b := stream.NewBroadcaster()
		defer b.Close()
		sampler.AddObserver(b.Observer())

		mux := http.NewServeMux()
		mux.Handle("/ws", b.Handler())
		srv := &http.Server{Addr: serveAddr, Handler: mux}
		go srv.ListenAndServe()
		defer srv.Shutdown(context.Background())
		fmt.Printf("streaming progress on ws://%s/ws\n", serveAddr)
	}

	var rec *coords.Recorder
	if len(exp.Coords) > 0 {
		if rec, err = coords.NewRecorder(exp.Coords); err != nil {
			return err
		}
		sampler.AddObserver(func(p sim.Progress) { rec.Record(p.Sweep) })
	}

	runCfg := sim.RunConfig{
		Sweeps:      cfg.Sampling.Sweeps,
		SampleEvery: cfg.Sampling.SampleEvery,
	}
	if cfg.Sampling.TuneEvery > 0 {
		tuner, err := move.NewTuner(cfg.Sampling.TuneTarget, move.DefaultTuneMin, move.DefaultTuneMax)
		if err != nil {
			return err
		}
		runCfg.TuneEvery = cfg.Sampling.TuneEvery
		runCfg.Tuner = tuner
	}

	var result *sim.Result
	if live {
		result, err = tui.Run(sampler, runCfg)
	} else {
		fmt.Printf("running %d sweeps over %d particles...\n",
			cfg.Sampling.Sweeps, exp.Spc.NumActive())
		start := time.Now()
		result, err = sampler.Run(context.Background(), runCfg)
		if err == nil {
			fmt.Printf("completed in %v\n", time.Since(start).Round(time.Millisecond))
		}
	}
	if err != nil {
		return err
	}

	runID, err := st.Save(cfg, result, exp.Spc, exp.Moves)
	if err != nil {
		return err
	}
	if rec != nil {
		if err := st.SaveCoordinates(runID, rec.Names(), rec.Sweeps, rec.Values); err != nil {
			return err
		}
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("initial energy: %.4f kT\n", result.InitialEnergy)
	fmt.Printf("final energy:   %.4f kT\n", result.FinalEnergy)
	fmt.Printf("drift:          %.3g kT\n", result.Drift)
	fmt.Println()
	fmt.Println(sampler.Info())

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
	fmt.Fprintln(w, "ID\tTIME\tGEOMETRY\tSWEEPS\tFINAL U\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%.3g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Geometry,
			run.Sweeps,
			run.FinalEnergy,
			run.Drift,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	_, energies, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}
	if len(energies) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("sweeps: %d\n\n", meta.Sweeps)

	graph := asciigraph.Plot(energies,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("energy / kT vs sample"),
	)
	fmt.Println(graph)

	fmt.Println("\nacceptance:")
	for name, acc := range meta.Acceptance {
		fmt.Printf("  %s: %.1f%%\n", name, 100*acc)
	}

	return nil
}

func plotCoords(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	names, _, values, err := st.LoadCoordinates(args[0])
	if err != nil {
		return err
	}

	for i, name := range names {
		if len(values[i]) < 2 {
			continue
		}
		graph := asciigraph.Plot(values[i],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs sample"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
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

const clearScreen = "\033[2J\033[H"

func watchRun(cmd *cobra.Command, args []string) error {
	conn, _, err := websocket.DefaultDialer.Dial(args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	var energies []float64
	for {
		var ev stream.Event
		if err := conn.ReadJSON(&ev); err != nil {
			break
		}
		energies = append(energies, ev.Energy)
		if len(energies) > 200 {
			energies = energies[1:]
		}

		fmt.Print(clearScreen)
		fmt.Printf("sweep %d/%d  energy %.4f kT\n\n", ev.Sweep, ev.Sweeps, ev.Energy)
		if len(energies) > 1 {
			graph := asciigraph.Plot(energies,
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("energy / kT"),
			)
			fmt.Println(graph)
		}
	}
	fmt.Println("stream closed")
	return nil
}

func exportPlot(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	swp, energies, err := st.LoadTrace(args[0])
	if err != nil {
		return err
	}

	if err := export.EnergyTrace(outFile, swp, energies); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}
