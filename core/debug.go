package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default

	// debugEnabled controls whether DebugPrintln produces output
	debugEnabled bool = false
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, stderr, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// BusStep identifies which part of an expander transaction failed
type BusStep uint8

const (
	StepStart   BusStep = iota + 1 // Start addressed for write
	StepCommand                    // Register command byte
	StepData                       // Data byte
	StepRestart                    // Repeated start addressed for read
	StepStop                       // Deferred transfer reported at stop
)

func (s BusStep) String() string {
	switch s {
	case StepStart:
		return "start"
	case StepCommand:
		return "command"
	case StepData:
		return "data"
	case StepRestart:
		return "restart"
	case StepStop:
		return "stop"
	default:
		return "unknown"
	}
}

// BusFault captures one failed expander transaction for post-mortem
type BusFault struct {
	Seq     uint32 // Fault number, starting at 1
	Chip    uint8
	Command byte
	Step    BusStep
}

const (
	FaultRingSize = 16 // Keep last 16 faults
)

// FaultLog counts bus faults and keeps the most recent ones in a ring
type FaultLog struct {
	ring  [FaultRingSize]BusFault
	head  uint8
	count uint32
}

// Record stores a fault in the ring and bumps the counter
func (f *FaultLog) Record(chip uint8, command byte, step BusStep) {
	f.count++
	f.ring[f.head] = BusFault{Seq: f.count, Chip: chip, Command: command, Step: step}
	f.head = (f.head + 1) % FaultRingSize
}

// Count returns the number of faults recorded since boot
func (f *FaultLog) Count() uint32 {
	return f.count
}

// Recent returns the retained faults, oldest first
func (f *FaultLog) Recent() []BusFault {
	out := make([]BusFault, 0, FaultRingSize)
	for i := uint8(0); i < FaultRingSize; i++ {
		evt := f.ring[(f.head+i)%FaultRingSize]
		if evt.Seq == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// Dump writes the retained faults through w
func (f *FaultLog) Dump(w DebugWriter) {
	if w == nil {
		return
	}
	w("[FAULT] total=" + utoa(f.count))
	for _, evt := range f.Recent() {
		w("[FAULT] #" + utoa(evt.Seq) +
			" chip=" + itoa(int(evt.Chip)) +
			" cmd=" + hex8(evt.Command) +
			" step=" + evt.Step.String())
	}
}
