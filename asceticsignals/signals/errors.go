package signals

import "github.com/pkg/errors"

// ErrDestroyedSignal is returned by Connect and Fire once the signal has been
// destroyed. It points at a caller that kept a reference too long; retrying
// will not help.
var ErrDestroyedSignal = errors.New("signals: signal is destroyed")
