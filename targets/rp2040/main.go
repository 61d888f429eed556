//go:build rp2040

package main

import (
	"machine"
	"time"

	"kimera/core"
)

// seedDefaults is "true" to overwrite the stored mapping with the compiled-in
// one at every boot. Set with -ldflags "-X main.seedDefaults=false" once the
// board's mapping is configured from the console.
var seedDefaults = "true"

const (
	// Time between driving a row low and sampling the columns
	settleMicros = 30

	// Pause between scan passes
	scanInterval = 1 * time.Millisecond
)

var (
	matrix  *core.Matrix
	console *core.Console

	// Debug counters
	scans     uint32
	msgerrors uint32
)

func main() {
	// CRITICAL: Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	core.SetDebugWriter(func(s string) {
		USBWriteBytes([]byte(s + "\r\n"))
	})
	core.SetDebugEnabled(true)

	cfg := core.DefaultConfig()
	cfg.SeedDefaults = seedDefaults == "true"

	// The EEPROM has its own bus so the mapping can load before the
	// expander bus is configured
	store := core.NewEEPROMStore(eepromBus())
	matrix = core.NewMatrix(expanderBus(cfg.Layout), store, cfg)
	if err := matrix.Init(); err != nil {
		msgerrors++
	}

	console = core.NewConsole(matrix, usbWriter{}, settle)

	rows := make([]core.MatrixRow, core.PXCount)
	prev := make([]core.MatrixRow, core.PXCount)
	for {
		// Recover from panics in the main loop to prevent a firmware crash
		func() {
			defer func() {
				if r := recover(); r != nil {
					msgerrors++
				}
			}()

			for USBAvailable() > 0 {
				b, err := USBRead()
				if err != nil {
					msgerrors++
					break
				}
				console.Feed(b)
			}

			// Bus failures are counted in the fault log; keep scanning
			matrix.Scan(rows, settle)
			scans++
			reportChanges(prev, rows)
			copy(prev, rows)
		}()

		time.Sleep(scanInterval)
	}
}

// reportChanges logs every key whose state differs between two passes
func reportChanges(prev, rows []core.MatrixRow) {
	if !core.IsDebugEnabled() {
		return
	}
	for r := range rows {
		diff := prev[r] ^ rows[r]
		for c := 0; diff != 0; c++ {
			if diff&1 != 0 {
				state := " up"
				if rows[r]&(1<<uint(c)) != 0 {
					state = " down"
				}
				core.DebugPrintln("[KEY] row " + itoa(r) + " col " + itoa(c) + state)
			}
			diff >>= 1
		}
	}
}

// itoa converts int to string without importing strconv (for embedded)
func itoa(i int) string {
	if i == 0 {
		return "0"
	}

	negative := i < 0
	if negative {
		i = -i
	}

	var buf [20]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}

	if negative {
		pos--
		buf[pos] = '-'
	}

	return string(buf[pos:])
}
