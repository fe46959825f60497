// Package elf writes assembled 6502 images behind a fixed ELF32 header.
package elf

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Machine6502 is the e_machine value used for 6502 images.
const Machine6502 elf.Machine = 0x6502

// HeaderSize is the encoded size of an ELF32 header.
const HeaderSize = 52

// ErrNotImage is returned when data does not start with a 6502 ELF header.
var ErrNotImage = errors.New("not a 6502 ELF image")

// NewHeader returns the header for an executable image with the given entry
// point. Every other field is constant for this target.
func NewHeader(entry uint32) elf.Header32 {
	var h elf.Header32
	copy(h.Ident[:], elf.ELFMAG)
	h.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS32)
	h.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	h.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	h.Type = uint16(elf.ET_EXEC)
	h.Machine = uint16(Machine6502)
	h.Version = uint32(elf.EV_CURRENT)
	h.Entry = entry
	h.Phoff = HeaderSize
	h.Ehsize = HeaderSize
	return h
}

// WriteHeader encodes the header little-endian.
func WriteHeader(w io.Writer, entry uint32) error {
	h := NewHeader(entry)
	return binary.Write(w, binary.LittleEndian, &h)
}

// WriteImage writes the header followed by the section bytes.
func WriteImage(w io.Writer, entry uint32, code []byte) error {
	if err := WriteHeader(w, entry); err != nil {
		return err
	}
	_, err := w.Write(code)
	return err
}

// ReadImage splits an image into its header and code.
func ReadImage(data []byte) (elf.Header32, []byte, error) {
	var h elf.Header32
	if len(data) < HeaderSize || !bytes.HasPrefix(data, []byte(elf.ELFMAG)) {
		return h, nil, ErrNotImage
	}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return h, nil, err
	}
	if elf.Machine(h.Machine) != Machine6502 || elf.Class(h.Ident[elf.EI_CLASS]) != elf.ELFCLASS32 {
		return h, nil, fmt.Errorf("%w: machine %#x", ErrNotImage, h.Machine)
	}
	return h, data[HeaderSize:], nil
}

// WriteFile writes an image to path. The file is written under a temporary
// name and renamed into place, so a failed write never leaves a partial file.
func WriteFile(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0755); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
