package mcu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"kimera/host/serial"
)

// Reply terminators sent by the firmware console
const (
	replyOK  = "ok"
	replyErr = "err"
)

// DefaultReplyTimeout bounds the wait for a command's terminator
const DefaultReplyTimeout = 2 * time.Second

// MCU represents a connection to the keyboard controller's console
type MCU struct {
	// Serial port
	port   serial.Port
	reader *bufio.Reader

	// ReplyTimeout bounds the wait for a command's terminator
	ReplyTimeout time.Duration

	// Connection state
	connected bool
}

// Reply is the outcome of one console command
type Reply struct {
	// Lines printed before the terminator
	Lines []string
}

// CommandError is returned when the console answers with err
type CommandError struct {
	Command string
	Reason  string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Command, e.Reason)
}

// Mapping is a row/column pin table as printed by show; -1 marks a gap
type Mapping struct {
	Rows []int
	Cols []int
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{
		ReplyTimeout: DefaultReplyTimeout,
		connected:    false,
	}
}

// Connect connects to the controller via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	m.Attach(port)
	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.port = port
	m.reader = bufio.NewReader(port)
	m.connected = true
}

// Close closes the connection
func (m *MCU) Close() error {
	m.connected = false
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// IsConnected returns whether the controller is connected
func (m *MCU) IsConnected() bool {
	return m.connected
}

// SendCommand sends one console command and collects its reply
func (m *MCU) SendCommand(args ...string) (*Reply, error) {
	if !m.connected {
		return nil, fmt.Errorf("not connected to MCU")
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	line := strings.Join(args, " ")
	if _, err := m.port.Write([]byte(line + "\n")); err != nil {
		return nil, fmt.Errorf("failed to send %q: %w", line, err)
	}
	if err := m.port.Flush(); err != nil {
		return nil, fmt.Errorf("failed to flush: %w", err)
	}

	reply := &Reply{}
	deadline := time.Now().Add(m.ReplyTimeout)
	var partial strings.Builder
	for {
		chunk, err := m.reader.ReadString('\n')
		partial.WriteString(chunk)
		if err != nil {
			// Read timeouts surface as EOF or empty reads; anything else is fatal
			if !isReadTimeout(err) {
				return reply, fmt.Errorf("reading reply to %q: %w", line, err)
			}
			if time.Now().After(deadline) {
				return reply, fmt.Errorf("no reply to %q: %w", line, err)
			}
			continue
		}

		text := strings.TrimRight(partial.String(), "\r\n")
		partial.Reset()
		switch {
		case text == replyOK:
			return reply, nil
		case text == replyErr || strings.HasPrefix(text, replyErr+" "):
			reason := strings.TrimSpace(strings.TrimPrefix(text, replyErr))
			return reply, &CommandError{Command: args[0], Reason: reason}
		default:
			reply.Lines = append(reply.Lines, text)
		}
	}
}

func isReadTimeout(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrNoProgress)
}

// Show fetches the staged mapping, or the live one
func (m *MCU) Show(live bool) (*Mapping, error) {
	args := []string{"show"}
	if live {
		args = append(args, "live")
	}
	reply, err := m.SendCommand(args...)
	if err != nil {
		return nil, err
	}
	return ParseMapping(reply.Lines)
}

// ParseMapping parses the "rows N: ..." and "cols N: ..." lines of show
func ParseMapping(lines []string) (*Mapping, error) {
	mapping := &Mapping{}
	for _, line := range lines {
		head, list, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		name, count, ok := strings.Cut(head, " ")
		if !ok {
			return nil, fmt.Errorf("malformed line %q", line)
		}
		n, err := strconv.Atoi(count)
		if err != nil {
			return nil, fmt.Errorf("bad count in %q: %w", line, err)
		}

		pins := make([]int, 0, n)
		for _, f := range strings.Fields(list) {
			if f == "-" {
				pins = append(pins, -1)
				continue
			}
			p, err := strconv.Atoi(f)
			if err != nil {
				return nil, fmt.Errorf("bad pin %q: %w", f, err)
			}
			pins = append(pins, p)
		}

		switch name {
		case "rows":
			mapping.Rows = pins
		case "cols":
			mapping.Cols = pins
		default:
			return nil, fmt.Errorf("unexpected table %q", name)
		}
	}
	return mapping, nil
}

// Scan runs one scan on the controller and returns the row bitmasks
func (m *MCU) Scan() (map[int]uint32, error) {
	reply, err := m.SendCommand("scan")
	if err != nil {
		return nil, err
	}

	rows := make(map[int]uint32)
	for _, line := range reply.Lines {
		var row int
		var mask uint32
		if _, err := fmt.Sscanf(line, "row %d 0x%x", &row, &mask); err != nil {
			continue // Fault summary
		}
		rows[row] = mask
	}
	return rows, nil
}
