package random

import "go.uber.org/zap"

// Logged wraps a Source, counts every draw and logs each one at debug level.
//
// The counter lets callers assert that a code path consumed no randomness.
type Logged struct {
	src    Source
	logger *zap.Logger
	draws  int
}

// NewLogged creates a Logged stream drawing from src.
//
// Precondition: src and logger must be non-nil.
func NewLogged(src Source, logger *zap.Logger) *Logged {
	return &Logged{src: src, logger: logger}
}

// Draws returns the number of values drawn so far.
func (l *Logged) Draws() int { return l.draws }

func (l *Logged) record(kind string, field zap.Field) {
	l.draws++
	if ce := l.logger.Check(zap.DebugLevel, "random draw"); ce != nil {
		ce.Write(zap.String("kind", kind), field, zap.Int("draw", l.draws))
	}
}

// NextInt draws from the wrapped source and logs the result.
func (l *Logged) NextInt(bound int) int {
	v := l.src.NextInt(bound)
	l.record("int", zap.Ints("bound_value", []int{bound, v}))
	return v
}

// NextFloat draws from the wrapped source and logs the result.
func (l *Logged) NextFloat() float32 {
	v := l.src.NextFloat()
	l.record("float", zap.Float32("value", v))
	return v
}

// NextBoolean draws from the wrapped source and logs the result.
func (l *Logged) NextBoolean() bool {
	v := l.src.NextBoolean()
	l.record("bool", zap.Bool("value", v))
	return v
}

// NextDouble draws from the wrapped source and logs the result.
func (l *Logged) NextDouble() float64 {
	v := l.src.NextDouble()
	l.record("double", zap.Float64("value", v))
	return v
}

// NextLong draws from the wrapped source and logs the result.
func (l *Logged) NextLong() int64 {
	v := l.src.NextLong()
	l.record("long", zap.Int64("value", v))
	return v
}
