//go:build rp2040

package main

import (
	"machine"

	"kimera/core"
)

const (
	// Expanders: I2C0 on SDA=GP4, SCL=GP5
	expanderFrequency = 400 * machine.KHz

	// EEPROM: I2C1 on SDA=GP6, SCL=GP7
	eepromFrequency = 400 * machine.KHz
)

// expanderBus returns the expander bus. machine.I2C0 is configured by
// matrix Init, after the mapping has been loaded.
func expanderBus(layout core.Layout) *core.TxBus {
	bus := core.NewTxBus(machine.I2C0, int(layout.Ports()))
	bus.ConfigureFunc = func() error {
		return machine.I2C0.Configure(machine.I2CConfig{
			Frequency: expanderFrequency,
			SDA:       machine.GP4,
			SCL:       machine.GP5,
		})
	}
	return bus
}

// eepromBus configures and returns the EEPROM bus. A configuration failure
// leaves the bus unusable; the store then reports errors and Init falls
// back to the compiled-in mapping.
func eepromBus() *machine.I2C {
	err := machine.I2C1.Configure(machine.I2CConfig{
		Frequency: eepromFrequency,
		SDA:       machine.GP6,
		SCL:       machine.GP7,
	})
	if err != nil {
		core.DebugPrintln("[KIMERA] eeprom bus configure failed: " + err.Error())
	}
	return machine.I2C1
}
