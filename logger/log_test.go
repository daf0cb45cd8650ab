package logger_test

import (
	"strings"
	"testing"

	"github.com/jdersch/Ridge32/logger"
)

func TestLogDeduplicatesAdjacentEntries(t *testing.T) {
	logger.Clear()
	logger.Log("CPU", "illegal instruction")
	logger.Log("CPU", "illegal instruction")
	logger.Log("CPU", "illegal instruction")

	entries := logger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected repeated entries to collapse into one, got %d", len(entries))
	}

	var buf strings.Builder
	logger.Write(&buf)
	if !strings.Contains(buf.String(), "repeat x3") {
		t.Errorf("expected repeat count in output, got %q", buf.String())
	}
}

func TestLogfFormatsDetail(t *testing.T) {
	logger.Clear()
	logger.Logf("MMU", "page fault at %#08x", uint32(0x1000))

	entries := logger.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Detail != "page fault at 0x00001000" {
		t.Errorf("unexpected detail: %q", entries[0].Detail)
	}
}

func TestTailReturnsMostRecent(t *testing.T) {
	logger.Clear()
	logger.Log("A", "one")
	logger.Log("B", "two")
	logger.Log("C", "three")

	var buf strings.Builder
	logger.Tail(&buf, 2)
	out := buf.String()
	if strings.Contains(out, "one") || !strings.Contains(out, "two") || !strings.Contains(out, "three") {
		t.Errorf("unexpected tail output: %q", out)
	}
}
