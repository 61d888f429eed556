package mcu

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

// scriptPort answers every write with the next scripted reply
type scriptPort struct {
	sent    bytes.Buffer
	replies []string
	pending strings.Reader

	// readErr, when set, fails every read
	readErr error
	reads   int
}

func (p *scriptPort) Write(b []byte) (int, error) {
	p.sent.Write(b)
	if len(p.replies) > 0 {
		p.pending.Reset(p.replies[0])
		p.replies = p.replies[1:]
	}
	return len(b), nil
}

func (p *scriptPort) Read(b []byte) (int, error) {
	p.reads++
	if p.readErr != nil {
		return 0, p.readErr
	}
	return p.pending.Read(b)
}

func (p *scriptPort) Flush() error { return nil }
func (p *scriptPort) Close() error { return nil }

func newScripted(replies ...string) (*MCU, *scriptPort) {
	port := &scriptPort{replies: replies}
	m := NewMCU()
	m.ReplyTimeout = 10 * time.Millisecond
	m.Attach(port)
	return m, port
}

func TestSendCommand(t *testing.T) {
	m, port := newScripted("errors 0\r\nok\r\n")

	reply, err := m.SendCommand("load")
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if port.sent.String() != "load\n" {
		t.Errorf("Expected \"load\\n\" sent, got %q", port.sent.String())
	}
	if len(reply.Lines) != 1 || reply.Lines[0] != "errors 0" {
		t.Errorf("Expected one reply line, got %q", reply.Lines)
	}
}

func TestSendCommandError(t *testing.T) {
	m, _ := newScripted("err bad pin 40\n")

	_, err := m.SendCommand("rows", "40")
	var cerr *CommandError
	if !errors.As(err, &cerr) {
		t.Fatalf("Expected CommandError, got %v", err)
	}
	if cerr.Command != "rows" || cerr.Reason != "bad pin 40" {
		t.Errorf("Expected rows/bad pin 40, got %s/%s", cerr.Command, cerr.Reason)
	}
}

func TestSendCommandTimeout(t *testing.T) {
	m, _ := newScripted("row 0 0x00000000\n")

	_, err := m.SendCommand("scan")
	if !errors.Is(err, io.EOF) {
		t.Errorf("Expected timeout wrapping EOF, got %v", err)
	}
}

func TestSendCommandReadFailure(t *testing.T) {
	m, port := newScripted()
	m.ReplyTimeout = time.Hour
	port.readErr = os.ErrClosed

	_, err := m.SendCommand("show")
	if !errors.Is(err, os.ErrClosed) {
		t.Fatalf("Expected ErrClosed, got %v", err)
	}
	if port.reads != 1 {
		t.Errorf("Expected to give up after one failed read, got %d reads", port.reads)
	}
}

func TestSendCommandNotConnected(t *testing.T) {
	if _, err := NewMCU().SendCommand("show"); err == nil {
		t.Error("Expected error when not connected")
	}
}

func TestShow(t *testing.T) {
	m, port := newScripted("rows 2: 3 -\ncols 3: 8 9 10\nok\n")

	mapping, err := m.Show(true)
	if err != nil {
		t.Fatalf("Show failed: %v", err)
	}
	if port.sent.String() != "show live\n" {
		t.Errorf("Expected \"show live\" sent, got %q", port.sent.String())
	}
	if len(mapping.Rows) != 2 || mapping.Rows[0] != 3 || mapping.Rows[1] != -1 {
		t.Errorf("Expected rows [3 -1], got %v", mapping.Rows)
	}
	if len(mapping.Cols) != 3 || mapping.Cols[2] != 10 {
		t.Errorf("Expected cols [8 9 10], got %v", mapping.Cols)
	}
}

func TestParseMappingMalformed(t *testing.T) {
	testCases := map[string]string{
		"no colon":  "rows 2 3 4",
		"bad count": "rows x: 1",
		"bad pin":   "cols 1: y",
		"unknown":   "keys 1: 2",
	}
	for name, line := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseMapping([]string{line}); err == nil {
				t.Errorf("Expected error for %q", line)
			}
		})
	}
}

func TestScan(t *testing.T) {
	m, _ := newScripted("row 0 0x00000000\nrow 1 0x00000004\nbus faults 3\nok\n")

	rows, err := m.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(rows) != 2 || rows[1] != 4 {
		t.Errorf("Expected rows 0 and 1 with row 1 = 4, got %v", rows)
	}
}
