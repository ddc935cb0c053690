package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// LoadROM reads a whitespace-delimited hex-pair ROM image per §6: each
// instruction slot is written as two 4-hex-digit words, opcode then
// argument, in address order starting at 0. Grounded on
// CpuController.cpp's read_ROM_file loop, re-expressed with
// bufio.Scanner+ScanWords rather than hand-rolled whitespace skipping.
func LoadROM(path string) (*ROMPair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &HostIOError{Message: fmt.Sprintf("cannot open ROM file %s: %v", path, err)}
	}
	defer f.Close()

	rom := &ROMPair{}
	scanner := bufio.NewScanner(f)
	scanner.Split(bufio.ScanWords)

	var addr uint16
	pairs := 0
	for {
		high, ok, err := nextWord(scanner)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		low, ok, err := nextWord(scanner)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &HostIOError{Message: fmt.Sprintf("%s: odd number of hex words, truncated instruction at address 0x%04X", path, addr)}
		}
		if pairs == 0x10000 {
			return nil, &HostIOError{Message: fmt.Sprintf("%s: more than 0x10000 instruction pairs", path)}
		}
		rom.Write(addr, high, low)
		addr++
		pairs++
	}

	return rom, nil
}

func nextWord(scanner *bufio.Scanner) (uint16, bool, error) {
	if !scanner.Scan() {
		return 0, false, scanner.Err()
	}
	v, err := strconv.ParseUint(scanner.Text(), 16, 16)
	if err != nil {
		return 0, false, &HostIOError{Message: fmt.Sprintf("malformed hex word %q in ROM file: %v", scanner.Text(), err)}
	}
	return uint16(v), true, nil
}
