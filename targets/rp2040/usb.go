//go:build rp2040

package main

import (
	"machine"
)

// InitUSB initializes USB serial communication
// TinyGo automatically sets up USB CDC-ACM on RP2040
func InitUSB() {
	// machine.Serial is USB CDC on RP2040, not UART
	err := machine.Serial.Configure(machine.UARTConfig{})
	if err != nil {
		return
	}
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBRead reads a single byte from USB
func USBRead() (byte, error) {
	return machine.Serial.ReadByte()
}

// USBWriteBytes writes multiple bytes to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// usbWriter carries console replies; CR is added for terminal emulators
type usbWriter struct{}

func (usbWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		if b == '\n' {
			if _, err := USBWriteBytes([]byte{'\r', '\n'}); err != nil {
				return i, err
			}
			continue
		}
		if _, err := USBWriteBytes(p[i : i+1]); err != nil {
			return i, err
		}
	}
	return len(p), nil
}
