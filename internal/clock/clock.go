package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock abstracts time for services so tests can control it.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(func() Clock { return SystemClock{} }),
)
