// Field configuration console
// Line-oriented commands for inspecting and editing the persisted mapping
// over a serial link. Edits go to a staged copy; the live mapping only
// changes through the store at the next Init.
package core

import (
	"io"
	"strconv"
	"strings"
)

const consoleLineMax = 160

// Reply terminators; every command ends with exactly one of them
const (
	ReplyOK  = "ok"
	ReplyErr = "err"
)

// SeedNotice follows a successful save while every boot reseeds the defaults
const SeedNotice = "note: defaults are seeded at boot, this mapping is overwritten"

// Console executes configuration commands against a Matrix
type Console struct {
	m      *Matrix
	out    io.Writer
	settle func()

	staged Mapping

	line [consoleLineMax]byte
	n    int
}

// NewConsole returns a console writing replies to out; settle is passed to
// Scan for the scan command
func NewConsole(m *Matrix, out io.Writer, settle func()) *Console {
	return &Console{
		m:      m,
		out:    out,
		settle: settle,
		staged: m.Mapping(),
	}
}

// Staged returns the staged mapping
func (c *Console) Staged() Mapping {
	return c.staged
}

// Feed accumulates input bytes and executes a command at end of line.
// Overlong lines are discarded.
func (c *Console) Feed(b byte) {
	switch b {
	case '\r', '\n':
		if c.n > 0 {
			line := string(c.line[:c.n])
			c.n = 0
			c.Exec(line)
		}
	default:
		if c.n < len(c.line) {
			c.line[c.n] = b
			c.n++
		}
	}
}

// Exec runs one command line
func (c *Console) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	var err string
	switch cmd, args := fields[0], fields[1:]; cmd {
	case "help", "?":
		c.help()
	case "show":
		if len(args) > 0 && args[0] == "live" {
			live := c.m.Mapping()
			c.show(&live)
		} else {
			c.show(&c.staged)
		}
	case "rows":
		err = c.setPins(args, c.staged.SetRows)
	case "cols":
		err = c.setPins(args, c.staged.SetCols)
	case "defaults":
		c.staged = c.m.cfg.Defaults
	case "load":
		n := c.staged.Load(c.m.store, c.m.cfg.StoreBase)
		c.println("errors " + itoa(n))
	case "save":
		err = c.save()
	case "scan":
		c.scan()
	case "faults":
		c.m.exp.Faults().Dump(c.println)
	default:
		err = "unknown command " + cmd
	}

	if err != "" {
		c.println(ReplyErr + " " + err)
		return
	}
	c.println(ReplyOK)
}

func (c *Console) println(s string) {
	io.WriteString(c.out, s+"\n")
}

func (c *Console) help() {
	c.println("show [live]       staged (or live) mapping")
	c.println("rows <pin> ...    stage row pins")
	c.println("cols <pin> ...    stage column pins")
	c.println("defaults          stage the compiled-in mapping")
	c.println("load              stage the stored mapping")
	c.println("save              store the staged mapping (applies at boot")
	c.println("                  unless defaults are seeded)")
	c.println("scan              scan once and print row bitmasks")
	c.println("faults            bus fault count and recent faults")
}

func (c *Console) show(m *Mapping) {
	c.println("rows " + itoa(int(m.RowCount)) + ":" + pinList(m.Rows[:m.rowLimit()]))
	c.println("cols " + itoa(int(m.ColCount)) + ":" + pinList(m.Cols[:m.colLimit()]))
}

func pinList(pins []PinIndex) string {
	var sb strings.Builder
	for _, p := range pins {
		sb.WriteByte(' ')
		if p.Configured() {
			sb.WriteString(itoa(int(p)))
		} else {
			sb.WriteByte('-')
		}
	}
	return sb.String()
}

// setPins parses a pin list in logical order
func (c *Console) setPins(args []string, set func([]PinIndex)) string {
	if len(args) == 0 {
		return "no pins"
	}
	if len(args) > PXCount {
		return "too many pins"
	}
	pins := make([]PinIndex, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 0, 8)
		if err != nil || v >= PXCount {
			return "bad pin " + a
		}
		pins[i] = PinIndex(v)
	}
	set(pins)
	return ""
}

func (c *Console) save() string {
	s := &c.staged
	if s.RowCount == 0 || s.ColCount == 0 {
		return "rows and cols required"
	}
	if int(s.RowCount)+int(s.ColCount) > PXCount {
		return "too many pins"
	}
	if err := s.Persist(c.m.store, c.m.cfg.StoreBase); err != nil {
		// Joined errors carry one line each; the reply stays on one line
		return "store: " + strings.SplitN(err.Error(), "\n", 2)[0]
	}

	// Read back through the boot path to confirm the next Init accepts it
	var check Mapping
	if n := check.Load(c.m.store, c.m.cfg.StoreBase); n != 0 {
		return "verify: " + itoa(n) + " errors"
	}
	if c.m.cfg.SeedDefaults {
		c.println(SeedNotice)
	}
	return ""
}

func (c *Console) scan() {
	live := c.m.Mapping()
	rows := make([]MatrixRow, live.rowLimit())
	err := c.m.Scan(rows, c.settle)
	for r, cols := range rows {
		if _, ok := live.Row(r); !ok {
			continue
		}
		c.println("row " + itoa(r) + " " + hex32(uint32(cols)))
	}
	if err != nil {
		c.println("bus faults " + utoa(c.m.Faults()))
	}
}
