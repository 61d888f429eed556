package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/google/shlex"

	"kimera/host/mcu"
	"kimera/host/serial"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "Serial device path")
	baud    = flag.Int("baud", 115200, "Baud rate (ignored for USB CDC)")
	timeout = flag.Duration("timeout", mcu.DefaultReplyTimeout, "Reply timeout per command")
	watch   = flag.Duration("watch", 0, "With scan: repeat at this interval and print changes")
)

func main() {
	flag.Parse()

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	conn := mcu.NewMCU()
	conn.ReplyTimeout = *timeout
	if err := conn.ConnectWithConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	// One-shot mode: the remaining arguments are a single command
	if flag.NArg() > 0 {
		if err := run(conn, flag.Args()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Connected to %s. Enter commands ('help' for the console's list, 'quit' to exit):\n", *device)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}

		switch args[0] {
		case "quit", "exit", "q":
			return
		}
		if err := run(conn, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}

func run(conn *mcu.MCU, args []string) error {
	if args[0] == "scan" && *watch > 0 {
		return watchScan(conn, *watch)
	}

	reply, err := conn.SendCommand(args...)
	if reply != nil {
		for _, line := range reply.Lines {
			fmt.Println(line)
		}
	}
	var cerr *mcu.CommandError
	if errors.As(err, &cerr) {
		return fmt.Errorf("rejected: %s", cerr.Reason)
	}
	return err
}

// watchScan polls scan and prints rows whose bitmask changed
func watchScan(conn *mcu.MCU, interval time.Duration) error {
	prev := map[int]uint32{}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		rows, err := conn.Scan()
		if err != nil {
			return err
		}
		order := make([]int, 0, len(rows))
		for row := range rows {
			order = append(order, row)
		}
		sort.Ints(order)
		for _, row := range order {
			if mask := rows[row]; prev[row] != mask {
				fmt.Printf("row %d %#08x -> %#08x\n", row, prev[row], mask)
			}
		}
		prev = rows
	}
	return nil
}
