package models

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
)

// Registry is the set of type names the model generator actually produced.
// It is built once per run and read-only afterward.
type Registry map[string]struct{}

var (
	// top-level declarations only; indented lines are class bodies
	classDecl = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*[(:]`)
	aliasDecl = regexp.MustCompile(`^([A-Z][A-Za-z0-9_]*)\s*(?::\s*TypeAlias\s*)?=`)
)

// BuildRegistry statically scans a generated models file and records the
// names of its top-level class and alias declarations. The file is never
// imported or executed.
func BuildRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read generated models: %w", err)
	}
	return parseRegistry(string(data)), nil
}

func parseRegistry(source string) Registry {
	reg := Registry{}
	for _, line := range strings.Split(source, "\n") {
		if m := classDecl.FindStringSubmatch(line); m != nil {
			reg[m[1]] = struct{}{}
			continue
		}
		if m := aliasDecl.FindStringSubmatch(line); m != nil {
			reg[m[1]] = struct{}{}
		}
	}
	return reg
}

// Has reports whether the generator declared the given type name.
func (r Registry) Has(name string) bool {
	_, ok := r[name]
	return ok
}

// Names returns all declared type names in sorted order.
func (r Registry) Names() []string {
	out := make([]string, 0, len(r))
	for name := range r {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
