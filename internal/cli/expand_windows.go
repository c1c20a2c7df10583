package cli

import (
	"path/filepath"
	"strings"
)

// ExpandArgs expands wildcard patterns in positional arguments, since the
// Windows shell passes them through untouched. Patterns that match nothing
// are kept as typed.
func ExpandArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.HasPrefix(arg, "-") || !strings.ContainsAny(arg, "*?[") {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil || len(matches) == 0 {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out
}
