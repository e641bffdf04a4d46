// Package ingest parses bank export files into raw transaction rows. Parsers
// produce rows in the canonical shape but leave normalization (defaults,
// direction, merchant cleanup) to the model package and account assignment to
// the caller.
package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rimjhimsingh/smart-financial-coach/internal/model"
)

// Parser parses a transaction export file into raw rows.
type Parser interface {
	Parse(path string) ([]model.Transaction, error)
}

// ParserFunc is a function that implements Parser.
type ParserFunc func(path string) ([]model.Transaction, error)

func (f ParserFunc) Parse(path string) ([]model.Transaction, error) {
	return f(path)
}

var parsers = map[string]Parser{}

// Register registers a parser under the given format name.
func Register(name string, p Parser) {
	parsers[name] = p
}

// Get returns the parser for the given format.
func Get(format string) (Parser, error) {
	p, ok := parsers[format]
	if !ok {
		return nil, fmt.Errorf("unknown source format: %s (available: %v)", format, AvailableFormats())
	}
	return p, nil
}

// AvailableFormats returns the registered format names, sorted.
func AvailableFormats() []string {
	formats := make([]string, 0, len(parsers))
	for name := range parsers {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

// IsKnownFormat reports whether name is a registered format.
func IsKnownFormat(name string) bool {
	_, ok := parsers[name]
	return ok
}

// ParseFileArg splits a file argument that may carry a format prefix.
// "coach-csv:data.csv" yields ("coach-csv", "data.csv"); an argument without
// a known prefix is treated entirely as a path, so Windows drive letters and
// colons in filenames pass through untouched.
func ParseFileArg(arg string) (format, path string) {
	idx := strings.Index(arg, ":")
	if idx == -1 {
		return "", arg
	}
	prefix := arg[:idx]
	if IsKnownFormat(prefix) {
		return prefix, arg[idx+1:]
	}
	return "", arg
}
