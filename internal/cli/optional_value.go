package cli

import (
	"errors"
	"strconv"
)

// bareMarker is what pflag hands to Set when --floyd is given without a
// value. Process arguments cannot contain NUL, so no user value matches it.
const bareMarker = "\x00"

type presence int

const (
	absent presence = iota
	bare
	valued
)

// optionalValue is a pflag.Value for options whose argument may be omitted.
type optionalValue struct {
	state presence
	raw   string
}

func (v *optionalValue) Set(s string) error {
	if s == bareMarker {
		v.state = bare
		v.raw = ""
		return nil
	}
	v.state = valued
	v.raw = s
	return nil
}

func (v *optionalValue) String() string {
	return v.raw
}

func (v *optionalValue) Type() string {
	return "level"
}

func (v *optionalValue) level() float64 {
	switch v.state {
	case valued:
		f, err := strconv.ParseFloat(v.raw, 32)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return defaultFloyd
		}
		// Out-of-range levels stay infinite so the engine can reject them.
		return f
	default:
		return defaultFloyd
	}
}
