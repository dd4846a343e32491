package collaborators

import (
	"bufio"
	"fmt"
	"os"
)

// ReadCommandFile reads one shell command per line, preserving order and
// trimming nothing beyond the newline itself.
func ReadCommandFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("collaborators: open command file %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("collaborators: read command file %s: %w", path, err)
	}
	return lines, nil
}
