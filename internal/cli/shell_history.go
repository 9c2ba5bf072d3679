package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

const maxHistoryLines = 500

// shellHistory is the shell's command-line recall, backed by an append-only
// file. An empty path keeps history in memory only.
type shellHistory struct {
	path  string
	lines []string
	idx   int
}

func newShellHistory(path string) *shellHistory {
	h := &shellHistory{path: path}
	if path != "" {
		h.lines = loadHistoryFromPath(path)
	}
	h.idx = len(h.lines)
	return h
}

// add records line and resets the recall cursor. Consecutive duplicates
// are stored once.
func (h *shellHistory) add(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if n := len(h.lines); n == 0 || h.lines[n-1] != line {
		h.lines = append(h.lines, line)
		if h.path != "" {
			appendHistoryToPath(h.path, line)
		}
	}
	h.idx = len(h.lines)
}

// up moves to the previous entry. ok is false at the oldest entry.
func (h *shellHistory) up() (line string, ok bool) {
	if h.idx == 0 {
		return "", false
	}
	h.idx--
	return h.lines[h.idx], true
}

// down moves to the next entry; past the newest it returns "".
func (h *shellHistory) down() string {
	if h.idx < len(h.lines)-1 {
		h.idx++
		return h.lines[h.idx]
	}
	h.idx = len(h.lines)
	return ""
}

// loadHistoryFromPath reads command history from the given file.
// Returns nil if the file does not exist or cannot be read.
func loadHistoryFromPath(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) > maxHistoryLines {
		lines = lines[len(lines)-maxHistoryLines:]
	}
	return lines
}

// appendHistoryToPath appends one line to the history file. History is
// best-effort; errors are dropped.
func appendHistoryToPath(path, line string) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.WriteString(line + "\n")
}
