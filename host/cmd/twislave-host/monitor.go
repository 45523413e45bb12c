package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"twislave/host/monitor"
	"twislave/host/serial"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Decode the firmware's serial reports.",
	Long: "`monitor` opens the serial port the firmware reports on and logs " +
		"every transaction result until interrupted.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if device, _ := cmd.Flags().GetString("device"); device != "" {
			cfg.Device = device
		}
		if baud, _ := cmd.Flags().GetInt("baud"); baud != 0 {
			cfg.Baud = baud
		}

		port, err := serial.Open(&serial.Config{
			Device:      cfg.Device,
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			return err
		}
		defer port.Close()

		logger.Info().Str("device", cfg.Device).Int("baud", cfg.Baud).Msg("monitoring")

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		m := monitor.New(port, logger)
		m.Follow = true
		err = m.Run(ctx)

		stats := m.Stats()
		logger.Info().
			Int("reports", stats.Reports).
			Int("failures", stats.Failures).
			Int("invalid", stats.Invalid).
			Int("missed", stats.Missed).
			Int("discarded", stats.Discarded).
			Msg("monitor stopped")

		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
	monitorCmd.Flags().String("device", "", "Serial device (overrides TWISLAVE_DEVICE)")
	monitorCmd.Flags().Int("baud", 0, "Baud rate (overrides TWISLAVE_BAUD)")
}
