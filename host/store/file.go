// Package store keeps the matrix configuration in a plain file, standing in
// for the serial EEPROM when the expanders are driven from a host
package store

import (
	"errors"
	"fmt"
	"io"
	"os"

	"kimera/core"
)

// DefaultSize matches a 32 kbit AT24C32
const DefaultSize = 4096

// File is a core.ConfigStore backed by a file. Every StoreByte is written
// through to disk.
type File struct {
	f    *os.File
	data []byte
}

// Open opens or creates the store at path. A new or short file is extended
// to size with erased (0xFF) bytes.
func Open(path string, size int) (*File, error) {
	if size <= 0 || size > 1<<16 {
		return nil, fmt.Errorf("store size %d out of range", size)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open store %s: %w", path, err)
	}

	data := make([]byte, size)
	n, err := io.ReadFull(f, data)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		f.Close()
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}
	if n < size {
		// Extend to full size so later sparse writes leave erased gaps
		for i := n; i < size; i++ {
			data[i] = 0xFF
		}
		if _, err := f.WriteAt(data[n:], int64(n)); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to erase store %s: %w", path, err)
		}
	}

	return &File{f: f, data: data}, nil
}

func (s *File) LoadByte(addr uint16) (byte, error) {
	if int(addr) >= len(s.data) {
		return 0, core.ErrStoreRange
	}
	return s.data[addr], nil
}

func (s *File) StoreByte(addr uint16, v byte) error {
	if int(addr) >= len(s.data) {
		return core.ErrStoreRange
	}
	if _, err := s.f.WriteAt([]byte{v}, int64(addr)); err != nil {
		return err
	}
	s.data[addr] = v
	return nil
}

// Close syncs and closes the file
func (s *File) Close() error {
	if err := s.f.Sync(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}
