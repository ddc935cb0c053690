package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeROMFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rom")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadROMParsesHexPairs(t *testing.T) {
	path := writeROMFile(t, "0012 0034\nABCD 0001\n")
	rom, err := LoadROM(path)
	if err != nil {
		t.Fatal(err)
	}
	if rom.High[0] != 0x0012 || rom.Low[0] != 0x0034 {
		t.Fatalf("slot 0 = (0x%04X, 0x%04X), want (0x0012, 0x0034)", rom.High[0], rom.Low[0])
	}
	if rom.High[1] != 0xABCD || rom.Low[1] != 0x0001 {
		t.Fatalf("slot 1 = (0x%04X, 0x%04X), want (0xABCD, 0x0001)", rom.High[1], rom.Low[1])
	}
}

func TestLoadROMRejectsOddWordCount(t *testing.T) {
	path := writeROMFile(t, "0012 0034\nABCD\n")
	if _, err := LoadROM(path); err == nil {
		t.Fatal("expected HostIOError for a truncated trailing instruction")
	}
}

func TestLoadROMRejectsMalformedHex(t *testing.T) {
	path := writeROMFile(t, "zzzz 0034\n")
	if _, err := LoadROM(path); err == nil {
		t.Fatal("expected HostIOError for malformed hex")
	}
}

func TestLoadROMMissingFile(t *testing.T) {
	if _, err := LoadROM(filepath.Join(t.TempDir(), "missing.rom")); err == nil {
		t.Fatal("expected HostIOError for a missing ROM file")
	}
}
