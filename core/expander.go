// Expander register I/O
// Reads and writes the output, input, inversion and configuration register
// groups of PCA955x-style I2C GPIO expanders, one data byte per port
package core

// BusError reports a failed expander transaction
type BusError struct {
	Chip    uint8
	Command byte
	Step    BusStep
	Err     error
}

func (e *BusError) Error() string {
	msg := "expander " + itoa(int(e.Chip)) + " cmd " + hex8(e.Command) + ": " + e.Step.String() + " failed"
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Expanders drives a bank of expander chips on one bus
type Expanders struct {
	bus       TwoWireBus
	address   uint8 // 7-bit address of chip 0
	layout    Layout
	exclusive bool

	// Scratch register file, handed out by Scratch
	regs RegisterFile

	faults FaultLog
}

// NewExpanders returns a bank of layout.Chips chips starting at address.
// An unusable variant falls back to PCA9555 and the chip count is capped at
// MaxChips.
func NewExpanders(bus TwoWireBus, address uint8, layout Layout) *Expanders {
	layout = layout.clamp()
	return &Expanders{
		bus:     bus,
		address: address,
		layout:  layout,
		regs:    newRegisterFile(layout),
	}
}

// SetExclusive makes every transaction run with interrupts disabled
func (e *Expanders) SetExclusive(enabled bool) {
	e.exclusive = enabled
}

// Layout returns the bank layout as driven
func (e *Expanders) Layout() Layout {
	return e.layout
}

// Scratch refills the shared register file with v and returns it.
// The contents are only valid until the next call.
func (e *Expanders) Scratch(v byte) *RegisterFile {
	e.regs.Fill(v)
	return &e.regs
}

// Faults returns the bus fault log
func (e *Expanders) Faults() *FaultLog {
	return &e.faults
}

func (e *Expanders) addr(chip uint8) byte {
	return (e.address + chip) << 1
}

func (e *Expanders) fail(chip uint8, cmd byte, step BusStep, err error) error {
	e.faults.Record(chip, cmd, step)
	return &BusError{Chip: chip, Command: cmd, Step: step, Err: err}
}

// Write writes one register group of chip: command byte then one byte per port.
// The bus is always stopped, even after a failed step.
func (e *Expanders) Write(chip uint8, cmd byte, data []byte) error {
	if e.exclusive {
		state := disableInterrupts()
		defer restoreInterrupts(state)
	}

	err := e.write(chip, cmd, data)
	e.bus.Stop()
	return e.settle(chip, cmd, err)
}

func (e *Expanders) write(chip uint8, cmd byte, data []byte) error {
	if err := e.bus.Start(e.addr(chip) | I2CWrite); err != nil {
		return e.fail(chip, cmd, StepStart, err)
	}
	if err := e.bus.Write(cmd); err != nil {
		return e.fail(chip, cmd, StepCommand, err)
	}
	for _, b := range data[:e.layout.Ports()] {
		if err := e.bus.Write(b); err != nil {
			return e.fail(chip, cmd, StepData, err)
		}
	}
	return nil
}

// Read reads one register group of chip into data, one byte per port.
// The last byte is read without acknowledge; the bus is always stopped.
func (e *Expanders) Read(chip uint8, cmd byte, data []byte) error {
	if e.exclusive {
		state := disableInterrupts()
		defer restoreInterrupts(state)
	}

	err := e.read(chip, cmd, data)
	e.bus.Stop()
	return e.settle(chip, cmd, err)
}

func (e *Expanders) read(chip uint8, cmd byte, data []byte) error {
	addr := e.addr(chip)
	if err := e.bus.Start(addr | I2CWrite); err != nil {
		return e.fail(chip, cmd, StepStart, err)
	}
	if err := e.bus.Write(cmd); err != nil {
		return e.fail(chip, cmd, StepCommand, err)
	}
	if err := e.bus.Start(addr | I2CRead); err != nil {
		return e.fail(chip, cmd, StepRestart, err)
	}
	last := int(e.layout.Ports()) - 1
	for i := 0; i < last; i++ {
		data[i] = e.bus.ReadAck()
	}
	data[last] = e.bus.ReadNak()
	return nil
}

// settle folds in a transfer error reported by a buffered bus at stop
func (e *Expanders) settle(chip uint8, cmd byte, err error) error {
	if err != nil {
		return err
	}
	if b, ok := e.bus.(BufferedBus); ok {
		if serr := b.Err(); serr != nil {
			return e.fail(chip, cmd, StepStop, serr)
		}
	}
	return nil
}

// WriteOutput writes the output port latches of chip
func (e *Expanders) WriteOutput(chip uint8, data []byte) error {
	return e.Write(chip, e.layout.Variant.Output, data)
}

// WriteInversion writes the input polarity inversion registers of chip
func (e *Expanders) WriteInversion(chip uint8, data []byte) error {
	return e.Write(chip, e.layout.Variant.Inversion, data)
}

// WriteConfig writes the direction registers of chip (1 = input, 0 = output)
func (e *Expanders) WriteConfig(chip uint8, data []byte) error {
	return e.Write(chip, e.layout.Variant.Config, data)
}

// ReadInput reads the input port registers of chip
func (e *Expanders) ReadInput(chip uint8, data []byte) error {
	return e.Read(chip, e.layout.Variant.Input, data)
}
