package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"tinygo.org/x/drivers"

	"twislave/host/linuxi2c"
)

var exchangeCmd = &cobra.Command{
	Use:   "exchange BYTE...",
	Short: "Write bytes to the slave and read its reply.",
	Long: "`exchange 1 2 3 4` writes the bytes to the slave, waits the " +
		"configured gap, then reads the reply in a separate transfer.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		payload, err := parseBytes(args)
		if err != nil {
			return err
		}
		if err := applyBusFlags(cmd); err != nil {
			return err
		}
		n, _ := cmd.Flags().GetInt("read")
		if n <= 0 {
			n = len(payload)
		}

		bus, err := linuxi2c.Open(cfg.Bus)
		if err != nil {
			return err
		}
		defer bus.Close()

		ctx, stop := signalContext(cmd.Context())
		defer stop()

		reply, err := exchange(ctx, bus, cfg.Address, payload, n, cfg.Gap)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatBytes(reply))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exchangeCmd)
	addBusFlags(exchangeCmd)
	exchangeCmd.Flags().Int("read", 0, "Bytes to read back (default: as many as written)")
}

func addBusFlags(cmd *cobra.Command) {
	cmd.Flags().String("bus", "", "I2C adapter (overrides TWISLAVE_BUS)")
	cmd.Flags().String("addr", "", "Slave address (overrides TWISLAVE_ADDRESS)")
	cmd.Flags().Duration("gap", 0, "Delay between write and read (overrides TWISLAVE_GAP)")
}

func applyBusFlags(cmd *cobra.Command) error {
	if bus, _ := cmd.Flags().GetString("bus"); bus != "" {
		cfg.Bus = bus
	}
	if s, _ := cmd.Flags().GetString("addr"); s != "" {
		addr, err := parseAddress(s)
		if err != nil {
			return err
		}
		cfg.Address = addr
	}
	if gap, _ := cmd.Flags().GetDuration("gap"); gap > 0 {
		cfg.Gap = gap
	}
	return nil
}

// exchange writes w to addr, waits gap and reads n bytes back. The two
// halves are separate transfers so the slave sees a stop in between.
func exchange(ctx context.Context, bus drivers.I2C, addr uint16, w []byte, n int, gap time.Duration) ([]byte, error) {
	if err := bus.Tx(addr, w, nil); err != nil {
		return nil, fmt.Errorf("write to 0x%02X: %w", addr, err)
	}
	logger.Debug().Str("data", formatBytes(w)).Msg("written")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(gap):
	}

	r := make([]byte, n)
	if err := bus.Tx(addr, nil, r); err != nil {
		return nil, fmt.Errorf("read from 0x%02X: %w", addr, err)
	}
	logger.Debug().Str("data", formatBytes(r)).Msg("read")
	return r, nil
}

func parseAddress(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil || v == 0 || v > 0x7F {
		return 0, fmt.Errorf("invalid address %q: want a 7-bit address", s)
	}
	return uint16(v), nil
}

func parseBytes(args []string) ([]byte, error) {
	out := make([]byte, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q: %w", a, err)
		}
		out = append(out, byte(v))
	}
	return out, nil
}

func formatBytes(b []byte) string {
	s := ""
	for i, c := range b {
		if i > 0 {
			s += " "
		}
		s += strconv.Itoa(int(c))
	}
	return s
}
