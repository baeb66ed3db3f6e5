// Package symbols extracts candidate ticker symbols from free-form text.
package symbols

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"unicode"
)

// minRunLength is the shortest uppercase run accepted as a symbol candidate.
const minRunLength = 3

// Extract scans text line by line for maximal runs of uppercase letters of
// length >= 3 and returns up to maxCount unique candidates in first-seen
// order. Scanning stops as soon as the cap is reached; later occurrences are
// never inspected. A run cannot span a line break.
func Extract(r io.Reader, maxCount int) ([]string, error) {
	if maxCount <= 0 {
		return nil, nil
	}
	symbols := make([]string, 0, maxCount)
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := []rune(scanner.Text())
		for i := 0; i < len(line); {
			if !unicode.IsUpper(line[i]) {
				i++
				continue
			}
			start := i
			for i < len(line) && unicode.IsUpper(line[i]) {
				i++
			}
			if i-start < minRunLength {
				continue
			}
			sym := string(line[start:i])
			if _, ok := seen[sym]; ok {
				continue
			}
			seen[sym] = struct{}{}
			symbols = append(symbols, sym)
			if len(symbols) == maxCount {
				return symbols, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan symbol source: %w", err)
	}
	return symbols, nil
}

// ExtractFile extracts symbols from a document on disk.
func ExtractFile(path string, maxCount int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open symbol source: %w", err)
	}
	defer f.Close()
	return Extract(f, maxCount)
}
