package retention

import "log/slog"

// Options configures a retention operation. A nil *Options, or nil fields,
// select the defaults.
type Options struct {
	// Clock supplies "now". Default: SystemClock.
	Clock Clock

	// Logger receives run summaries. Default: slog.Default() tagged with
	// the operation's component name.
	Logger *slog.Logger

	// Methods is the set of registration methods accepted in exclusion
	// lists. Default: the built-in methods.
	Methods *MethodSet
}

func (o *Options) resolve(component string) Options {
	var resolved Options
	if o != nil {
		resolved = *o
	}
	if resolved.Clock == nil {
		resolved.Clock = SystemClock{}
	}
	if resolved.Logger == nil {
		resolved.Logger = slog.Default()
	}
	resolved.Logger = resolved.Logger.With("component", component)
	if resolved.Methods == nil {
		resolved.Methods = DefaultMethodSet()
	}
	return resolved
}
