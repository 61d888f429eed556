// Pin index model
// Maps a linear expander pin index to its (chip, port, bit) location
package core

// PinIndex addresses one pin across the whole bank of expander chips
type PinIndex uint8

const (
	// PXCount is the number of addressable expander pins
	PXCount = 32

	// Unconfigured marks a logical row/column with no physical pin
	Unconfigured PinIndex = 0xFF

	// MaxChips and MaxPorts bound the register file
	MaxChips = 8
	MaxPorts = 2
)

// Configured reports whether p refers to a physical pin
func (p PinIndex) Configured() bool {
	return p != Unconfigured
}

// Variant describes one expander family: pin density and register commands
type Variant struct {
	Name      string
	Pins      uint8 // Pins per chip (8 per port)
	Input     byte  // Input port 0 command
	Output    byte  // Output port 0 command
	Inversion byte  // Polarity inversion port 0 command
	Config    byte  // Configuration (direction) port 0 command
}

// Supported expander families
var (
	// PCA9555 / TCA9555: 16 pins, two ports, register pairs
	PCA9555 = Variant{Name: "pca9555", Pins: 16, Input: 0x00, Output: 0x02, Inversion: 0x04, Config: 0x06}

	// PCA9554 / TCA9554: 8 pins, one port
	PCA9554 = Variant{Name: "pca9554", Pins: 8, Input: 0x00, Output: 0x01, Inversion: 0x02, Config: 0x03}
)

// Location is a decomposed pin index
type Location struct {
	Chip uint8
	Port uint8
	Bit  uint8
}

// Layout is the physical bank: how many chips of which variant
type Layout struct {
	Chips   uint8
	Variant Variant
}

// DefaultLayout is two 16-pin expanders, 32 pins total
var DefaultLayout = Layout{Chips: 2, Variant: PCA9555}

// clamp replaces a missing or unusable variant and chip count with the
// defaults and bounds the chip count by the register file
func (l Layout) clamp() Layout {
	if p := l.Variant.Pins; p < 8 || p > 8*MaxPorts || p%8 != 0 {
		l.Variant = DefaultLayout.Variant
	}
	if l.Chips == 0 {
		l.Chips = DefaultLayout.Chips
	}
	if l.Chips > MaxChips {
		l.Chips = MaxChips
	}
	return l
}

// PinsPerChip returns the pin density of the layout's variant
func (l Layout) PinsPerChip() uint8 {
	return l.Variant.Pins
}

// Ports returns the number of 8-bit ports per chip
func (l Layout) Ports() uint8 {
	return l.Variant.Pins / 8
}

// PinCount returns the number of physical pins in the bank
func (l Layout) PinCount() int {
	return int(l.Chips) * int(l.Variant.Pins)
}

// Decompose splits a pin index into its chip, port and bit.
// Returns false for Unconfigured and for pins past the last chip.
func (l Layout) Decompose(p PinIndex) (Location, bool) {
	if !p.Configured() || l.Variant.Pins == 0 {
		return Location{}, false
	}
	perChip := l.Variant.Pins
	loc := Location{
		Chip: uint8(p) / perChip,
		Port: (uint8(p) % perChip) / 8,
		Bit:  uint8(p) % 8,
	}
	if loc.Chip >= l.Chips {
		return Location{}, false
	}
	return loc, true
}
