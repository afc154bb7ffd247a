package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/c360/semkernel/engine"
)

// loadTriples bulk-loads a whitespace-separated triples file: one
// "subject predicate object" line per triple, # for comments. Terms are
// interned in file order.
func loadTriples(e *engine.Engine, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open data file: %w", err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0
	loaded := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return fmt.Errorf("line %d: expected 3 terms, got %d", lineNo, len(fields))
		}

		s, err := e.Intern(fields[0])
		if err != nil {
			return fmt.Errorf("line %d: intern subject: %w", lineNo, err)
		}
		p, err := e.Intern(fields[1])
		if err != nil {
			return fmt.Errorf("line %d: intern predicate: %w", lineNo, err)
		}
		o, err := e.Intern(fields[2])
		if err != nil {
			return fmt.Errorf("line %d: intern object: %w", lineNo, err)
		}

		if err := e.AddTriple(s, p, o); err != nil {
			return fmt.Errorf("line %d: add triple: %w", lineNo, err)
		}
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	logger.Info("bulk load complete", "path", path, "lines", lineNo, "triples", loaded)
	return nil
}
