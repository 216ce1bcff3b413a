package dice

import "go.uber.org/zap"

// Roller wraps a Source and logger so that every named roll is logged at
// debug level with its reason and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn satisfies Source so a Roller can be passed anywhere a Source is accepted.
func (r *Roller) Intn(n int) int {
	return r.src.Intn(n)
}

// Percentile rolls [0, 99] for reason and logs the result.
func (r *Roller) Percentile(reason string) int {
	v := Percentile(r.src)
	r.logger.Debug("percentile roll",
		zap.String("reason", reason),
		zap.Int("result", v),
	)
	return v
}

// Chance rolls a probability check for reason and logs the outcome.
func (r *Roller) Chance(reason string, p float64) bool {
	ok := Chance(r.src, p)
	r.logger.Debug("chance roll",
		zap.String("reason", reason),
		zap.Float64("p", p),
		zap.Bool("success", ok),
	)
	return ok
}
