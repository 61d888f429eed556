// kimera-bench drives an expander bank from a Linux host's I2C bus, for
// checking a matrix board before it is wired to a controller
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"kimera/core"
	"kimera/host/store"
)

var (
	busName   = flag.String("bus", "", "I2C bus name or number (empty for the first one)")
	address   = flag.Uint("addr", core.DefaultExpanderAddress, "7-bit address of expander 0")
	chips     = flag.Uint("chips", uint(core.DefaultLayout.Chips), "Number of expanders")
	narrow    = flag.Bool("pca9554", false, "8-pin expanders instead of PCA9555")
	storePath = flag.String("store", "kimera.bin", "File holding the persisted mapping")
	seed      = flag.Bool("seed", false, "Overwrite the stored mapping with the defaults at start")
	settle    = flag.Duration("settle", 30*time.Microsecond, "Wait between selecting a row and reading columns")
	interval  = flag.Duration("interval", 10*time.Millisecond, "Scan period")
	verbose   = flag.Bool("verbose", false, "Print matrix debug messages")
)

func main() {
	flag.Parse()

	if *verbose {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
		core.SetDebugEnabled(true)
	}

	if _, err := host.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: host init: %v\n", err)
		os.Exit(1)
	}
	bus, err := i2creg.Open(*busName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open I2C bus: %v\n", err)
		os.Exit(1)
	}
	defer bus.Close()

	cfgStore, err := store.Open(*storePath, store.DefaultSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cfgStore.Close()

	cfg := core.DefaultConfig()
	cfg.Address = uint8(*address)
	cfg.Layout.Chips = uint8(*chips)
	if *narrow {
		cfg.Layout.Variant = core.PCA9554
	}
	cfg.SeedDefaults = *seed

	m := core.NewMatrix(core.NewTxBus(bus, int(cfg.Layout.Ports())), cfgStore, cfg)
	if err := m.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: init degraded: %v\n", err)
	}

	fmt.Println(banner(m, bus.String()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := scanLoop(ctx, m, *settle, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Stopped after %d bus faults\n", m.Faults())
}

// banner describes the bank as driven, after configuration defaults and limits
func banner(m *core.Matrix, bus string) string {
	layout := m.Expanders().Layout()
	mapping := m.Mapping()
	return fmt.Sprintf("%s x%d at %#02x on %s: %d rows, %d cols",
		layout.Variant.Name, layout.Chips, m.Config().Address, bus, mapping.RowCount, mapping.ColCount)
}

// scanLoop scans until ctx is done, printing each key transition
func scanLoop(ctx context.Context, m *core.Matrix, settle, interval time.Duration) error {
	wait := func() { time.Sleep(settle) }
	prev := make([]core.MatrixRow, core.PXCount)
	rows := make([]core.MatrixRow, core.PXCount)
	faults := m.Faults()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		if err := m.Scan(rows, wait); err != nil && m.Faults() != faults {
			fmt.Fprintf(os.Stderr, "bus faults: %d\n", m.Faults())
			faults = m.Faults()
		}
		for r := range rows {
			diff := rows[r] ^ prev[r]
			for c := 0; diff != 0; c++ {
				if diff&1 != 0 {
					state := "up"
					if rows[r]&(1<<uint(c)) != 0 {
						state = "down"
					}
					fmt.Printf("row %2d col %2d %s\n", r, c, state)
				}
				diff >>= 1
			}
		}
		copy(prev, rows)
	}
}
