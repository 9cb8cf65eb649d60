package dispatch

import "log"

// Default size of the inbound message buffer.
const defaultBuffer = 128

type config struct {
	buffer  int
	history int
	name    string
	logger  *log.Logger
}

func defaultConfig() config {
	return config{buffer: defaultBuffer, name: "loop", logger: logger}
}

// Option configures a Loop.
type Option func(*config)

// WithBuffer sets the size of the inbound message buffer. Submit blocks while
// the buffer is full. A size of 0 makes every Submit wait until the loop
// receives the message.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.buffer = n
		}
	}
}

// WithHistory makes the loop keep the last n transitions, available from
// History. The default is 0, which keeps none.
func WithHistory(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.history = n
		}
	}
}

// WithName sets the name used in log messages.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithLogger sets the logger. By default the loop logs through logutil.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
