package cli

// Options is the fully-parsed configuration for a single invocation.
//
// It is built once by Parse and handed to the engine by value; nothing
// mutates it afterwards.
type Options struct {
	Colors    int // 0 = engine default
	Speed     int // 0 = engine default
	Posterize int
	Floyd     float64

	Quality    OptionalString
	Extension  OptionalString
	OutputPath OptionalString
	MapFile    OptionalString

	Files       []string
	UsingStdin  bool
	UsingStdout bool

	Force                bool
	SkipIfLarger         bool
	Strip                bool
	IEBug                bool
	LastIndexTransparent bool
	Verbose              bool

	PrintHelp        bool
	PrintVersion     bool
	MissingArguments bool
}

// OptionalString holds a string option that may be absent. An absent value
// and an explicit empty string are different things to the engine.
type OptionalString struct {
	value string
	ok    bool
}

func Some(s string) OptionalString {
	return OptionalString{value: s, ok: true}
}

func None() OptionalString {
	return OptionalString{}
}

func (o OptionalString) Get() (string, bool) {
	return o.value, o.ok
}

func (o OptionalString) IsSet() bool {
	return o.ok
}

func (o OptionalString) Or(fallback string) string {
	if o.ok {
		return o.value
	}
	return fallback
}

func (o OptionalString) String() string {
	if !o.ok {
		return "<none>"
	}
	return o.value
}
