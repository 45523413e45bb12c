package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"twislave/core"
	"twislave/host/monitor"
	"twislave/protocol"
	"twislave/sim"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate [BYTE...]",
	Short: "Run the slave firmware logic against a simulated bus.",
	Long: "`simulate` runs the receive-then-respond loop on a model of the " +
		"TWI peripheral and plays the bus master against it. Reports travel " +
		"over the same framing the firmware uses on its serial port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			args = []string{"1", "2", "3", "4"}
		}
		payload, err := parseBytes(args)
		if err != nil {
			return err
		}
		if err := applyBusFlags(cmd); err != nil {
			return err
		}

		opts := simOptions{
			Address:     cfg.Address,
			GeneralCall: cfg.GeneralCall,
			Payload:     payload,
			Gap:         cfg.Gap,
		}
		opts.BufferSize, _ = cmd.Flags().GetInt("buffer")
		opts.Rounds, _ = cmd.Flags().GetInt("rounds")
		opts.Read, _ = cmd.Flags().GetInt("read")
		if gc, _ := cmd.Flags().GetBool("general-call"); gc {
			opts.GeneralCall = true
		}

		core.SetDebugWriter(func(s string) { logger.Debug().Msg(s) })
		core.SetDebugEnabled(logger.GetLevel() <= zerolog.DebugLevel)

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		res, err := simulate(ctx, opts)
		if err != nil {
			return err
		}
		for _, reply := range res.Replies {
			fmt.Fprintln(cmd.OutOrStdout(), formatBytes(reply))
		}
		logger.Info().
			Int("edges", res.Edges).
			Int("reports", res.Stats.Reports).
			Int("failures", res.Stats.Failures).
			Msg("simulation done")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	addBusFlags(simulateCmd)
	simulateCmd.Flags().Int("buffer", 4, "Slave buffer size")
	simulateCmd.Flags().Int("rounds", 1, "Number of exchanges")
	simulateCmd.Flags().Int("read", 0, "Bytes to read back (default: buffer size)")
	simulateCmd.Flags().Bool("general-call", false, "Enable general call on the slave")
}

type simOptions struct {
	Address     uint16
	GeneralCall bool
	BufferSize  int
	Rounds      int
	Payload     []byte
	Read        int
	Gap         time.Duration
}

type simResult struct {
	Replies [][]byte
	Reports []protocol.Report
	Stats   monitor.Stats
	Edges   int
}

var errReportsMissing = errors.New("slave reports did not arrive")

// simulate wires a core.Slave to a sim.Peripheral, runs the exchange loop on
// it and performs opts.Rounds exchanges as bus master. Reports go through a
// pipe into a monitor, as they would over the serial port.
func simulate(ctx context.Context, opts simOptions) (*simResult, error) {
	if opts.BufferSize <= 0 {
		opts.BufferSize = 4
	}
	if opts.Rounds <= 0 {
		opts.Rounds = 1
	}
	if opts.Read <= 0 {
		opts.Read = opts.BufferSize
	}

	bridge := &core.Bridge{}
	bus := sim.NewPeripheral(bridge)
	slave, err := core.New(bus, core.Address(opts.Address), core.Pins{}, bridge)
	if err != nil {
		return nil, err
	}

	res := &simResult{}
	want := 1 + 2*opts.Rounds
	arrived := make(chan struct{}, want)

	pr, pw := io.Pipe()
	mon := monitor.New(pr, logger)
	mon.OnReport = func(_ uint8, r protocol.Report) {
		res.Reports = append(res.Reports, r)
		select {
		case arrived <- struct{}{}:
		default:
		}
	}
	monDone := make(chan error, 1)
	go func() {
		// ends on EOF once the writer side is closed
		monDone <- mon.Run(context.Background())
	}()

	reports := protocol.NewReportWriter(pw)
	err = reports.Sync()
	if err == nil {
		err = reports.Report(core.StartupReport(slave.Address()))
	}
	if err != nil {
		pw.Close()
		<-monDone
		return nil, err
	}

	exCtx, cancel := context.WithCancel(ctx)
	ex := &core.Exchange{
		Slave:       slave,
		GeneralCall: opts.GeneralCall,
		Buffer:      make([]byte, opts.BufferSize),
		Transform:   core.TimesTen,
		Reporter:    reports,
	}
	exDone := make(chan error, 1)
	go func() { exDone <- ex.Run(exCtx) }()

	shutdown := func() error {
		cancel()
		exErr := <-exDone
		pw.Close()
		monErr := <-monDone
		res.Stats = mon.Stats()
		res.Edges = bus.Edges()
		if exErr != nil && !errors.Is(exErr, context.Canceled) {
			return exErr
		}
		return monErr
	}

	master := &sim.Master{Bus: bus}
	for i := 0; i < opts.Rounds; i++ {
		reply, err := exchange(ctx, master, opts.Address, opts.Payload, opts.Read, opts.Gap)
		if err != nil {
			shutdown()
			return nil, err
		}
		res.Replies = append(res.Replies, reply)
	}

	if err := waitReports(ctx, arrived, want); err != nil {
		shutdown()
		return nil, err
	}

	if err := shutdown(); err != nil {
		return nil, err
	}
	return res, nil
}

func waitReports(ctx context.Context, arrived <-chan struct{}, want int) error {
	timeout := time.NewTimer(sim.DefaultTimeout)
	defer timeout.Stop()

	for i := 0; i < want; i++ {
		select {
		case <-arrived:
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return errReportsMissing
		}
	}
	return nil
}
