// armsim simulates a two-link planar robotic arm tracing a circle at
// constant tangential speed and reports the joint-space trajectory
// (angles, angular velocities, angular accelerations).
//
// Usage:
//
//	armsim -l1 100 -l2 80 -center-x 150 -radius 30 -speed 50 -dt 0.1
//
// Options:
//
//	-l1, -l2 float        Link lengths (required, > 0)
//	-base-x, -base-y      Base position (default 0,0)
//	-center-x, -center-y  Circle center (default 0,0)
//	-radius float         Circle radius (>= 0)
//	-speed float          End-effector speed along the circle (> 0)
//	-dt float             Sampling time step (> 0)
//	-format string        Output format: csv or json (default csv)
//	-serve string         Serve the HTTP/WebSocket API on this address
//	                      instead of running once (e.g. ":8080")
//	-log-level string     DEBUG, INFO, WARN, ERROR (default INFO)
//
// Examples:
//
//	# One run, CSV trajectory on stdout
//	armsim -l1 100 -l2 80 -center-x 150 -radius 30 -speed 50 -dt 0.1
//
//	# Serve renderer/plotter consumers over HTTP and WebSocket
//	armsim -serve :8080
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"armsim/pkg/errors"
	"armsim/pkg/log"
	"armsim/pkg/metrics"
	"armsim/pkg/sim"
	"armsim/pkg/stream"
	"armsim/pkg/trajectory"
)

func main() {
	l1 := flag.Float64("l1", 0, "Length of the first link (required, > 0)")
	l2 := flag.Float64("l2", 0, "Length of the second link (required, > 0)")
	baseX := flag.Float64("base-x", 0, "X coordinate of the arm base")
	baseY := flag.Float64("base-y", 0, "Y coordinate of the arm base")
	centerX := flag.Float64("center-x", 0, "X coordinate of the circle center")
	centerY := flag.Float64("center-y", 0, "Y coordinate of the circle center")
	radius := flag.Float64("radius", 0, "Circle radius (>= 0)")
	speed := flag.Float64("speed", 0, "End-effector speed along the circle (> 0)")
	dt := flag.Float64("dt", 0, "Sampling time step (> 0)")
	format := flag.String("format", "csv", "Output format: csv or json")
	serve := flag.String("serve", "", "Serve the API on this address instead of running once")
	logLevel := flag.String("log-level", "INFO", "Log level: DEBUG, INFO, WARN, ERROR")

	flag.Parse()

	logger := log.New("armsim")
	logger.SetLevel(log.ParseLevel(*logLevel))
	log.ConfigureFromEnv(logger)

	registry := metrics.NewRegistry()
	simulator := sim.New(
		sim.WithEventSink(log.NewLoggerSink(logger.WithPrefix("sim"))),
		sim.WithMetrics(metrics.NewSimMetrics(registry)),
	)

	if *serve != "" {
		runServer(*serve, simulator, registry, logger)
		return
	}

	if *l1 <= 0 || *l2 <= 0 {
		fmt.Fprintf(os.Stderr, "Error: -l1 and -l2 are required and must be positive\n")
		flag.Usage()
		os.Exit(1)
	}

	req := sim.Request{
		L1:    *l1,
		L2:    *l2,
		BaseX: *baseX,
		BaseY: *baseY,
		Circle: trajectory.Circle{
			CenterX: *centerX,
			CenterY: *centerY,
			Radius:  *radius,
		},
		Sampling: trajectory.Sampling{
			Speed:    *speed,
			TimeStep: *dt,
		},
	}

	result, err := simulator.Run(req)
	if err != nil {
		if simErr := errors.AsSimError(err); simErr != nil && simErr.Code == errors.ErrOutOfReach {
			fmt.Fprintf(os.Stderr, "Error: %s (reach bounds [%.3f, %.3f])\n",
				simErr.Message, simErr.MinReach, simErr.MaxReach)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	switch *format {
	case "json":
		if err := writeJSON(os.Stdout, result.Trajectory); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
	case "csv":
		writeCSV(os.Stdout, result.Trajectory)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown format %q (want csv or json)\n", *format)
		os.Exit(1)
	}
}

// runServer starts the stream server and blocks until SIGINT/SIGTERM.
func runServer(addr string, simulator *sim.Simulator, registry *metrics.Registry, logger *log.Logger) {
	server := stream.New(stream.Config{
		Addr:      addr,
		Simulator: simulator,
		Registry:  registry,
		Logger:    logger.WithPrefix("stream"),
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		_ = server.Stop()
	}()

	if err := server.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// writeCSV prints the trajectory as one row per sample.
func writeCSV(w *os.File, tr trajectory.Trajectory) {
	fmt.Fprintln(w, "t,theta1,theta2,omega1,omega2,alpha1,alpha2")
	for _, s := range tr {
		fmt.Fprintf(w, "%.6f,%.9f,%.9f,%.9f,%.9f,%.9f,%.9f\n",
			s.T, s.Theta1, s.Theta2, s.Omega1, s.Omega2, s.Alpha1, s.Alpha2)
	}
}

// writeJSON prints the trajectory as parallel series plus summary fields.
func writeJSON(w *os.File, tr trajectory.Trajectory) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"sample_count": len(tr),
		"duration":     tr.Duration(),
		"series":       tr.Extract(),
	})
}
