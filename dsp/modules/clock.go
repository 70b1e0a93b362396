package modules

// NumSteps is the length of the step sequencers.
const NumSteps = 8

// stepper receives the clock's ticks at sample offsets within a block.
type stepper interface {
	// step starts the next step and returns its gate length in samples,
	// or zero if the step is a rest.
	step(offset int) int
	// gateOff ends the sounding step.
	gateOff(offset int)
}

// stepClock counts samples to the next step and to the end of the
// current gate. Both countdowns run independently so a gate can be
// shorter than its step.
type stepClock struct {
	untilStep int
	untilOff  int
	carry     float64
}

func (c *stepClock) reset() {
	*c = stepClock{untilOff: -1}
}

// run advances the clock over n samples, calling s at the exact offsets
// where a gate ends or a step begins.
func (c *stepClock) run(n int, samplesPerStep float64, s stepper) {
	pos := 0
	for pos < n {
		if c.untilOff == 0 {
			c.untilOff = -1
			s.gateOff(pos)
		}
		if c.untilStep <= 0 {
			if gate := s.step(pos); gate > 0 {
				c.untilOff = gate
			} else {
				c.untilOff = -1
			}
			period := samplesPerStep + c.carry
			whole := max(int(period), 1)
			c.carry = period - float64(whole)
			c.untilStep += whole
		}

		next := n
		if c.untilStep > 0 {
			next = min(next, pos+c.untilStep)
		}
		if c.untilOff > 0 {
			next = min(next, pos+c.untilOff)
		}
		span := next - pos
		c.untilStep -= span
		if c.untilOff > 0 {
			c.untilOff -= span
		}
		pos = next
	}
}
