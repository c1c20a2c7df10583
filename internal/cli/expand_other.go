//go:build !windows

package cli

// ExpandArgs returns args unchanged; the shell has already expanded globs.
func ExpandArgs(args []string) []string {
	return args
}
