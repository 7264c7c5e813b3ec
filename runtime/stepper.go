// Package runtime supplies the "modelled hardware" half of cosimulation:
// a clocked stepper that advances a state index into an
// hls/cfg.Scheduled program once per tick. It does not evaluate the
// states' statements and does not model Await or async with; GearDone
// is returned by Cancel. Its *sim.TickingComponent Tick loop and engine
// wiring generalise a fixed instruction-group program counter into a
// pointer into an hls/cfg.Scheduled program.
package runtime

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/gearsim/hls/cfg"
)

// GearDone is the cancellation sentinel: returning it from a Stepper's
// driving loop unwinds the gear body, and the caller (the enclosing
// hierarchy) must mark done every producing port of that gear.
type GearDone struct{ Reason string }

func (e *GearDone) Error() string { return "runtime: gear done: " + e.Reason }

// Stepper drives one leaf gear's scheduled state machine, one state
// transition per Tick.
type Stepper struct {
	*sim.TickingComponent

	Program *cfg.Scheduled
	State   int

	// Ports is the leaf gear's InPort/OutPort-backed akita ports, keyed
	// by the same names used inside the scheduled IR's Component nodes.
	Ports map[string]sim.Port

	done bool
}

// NewStepper builds a Stepper wired to engine at freq using the
// standard `sim.NewTickingComponent(...)` wiring pattern.
func NewStepper(name string, engine sim.Engine, freq sim.Freq, program *cfg.Scheduled, ports map[string]sim.Port) *Stepper {
	s := &Stepper{Program: program, Ports: ports}
	s.TickingComponent = sim.NewTickingComponent(name, engine, freq, s)
	return s
}

// Tick advances the state machine by exactly one cycle: it is the
// concrete host for the scheduled states package hls/cfg produces and
// package hdlgen lowers into guarded assignments. A real textual HDL
// backend is out of scope; Tick exists so the scheduled
// program has something to execute against for testing.
func (s *Stepper) Tick() (madeProgress bool) {
	if s.done {
		return false
	}
	if s.State < 0 || s.State >= len(s.Program.States) {
		s.done = true
		return false
	}
	// The actual per-state assignment evaluation is the HDL emitter's
	// job once it textualises hdlgen's CombBlock; the Stepper only proves the state index advances on
	// schedule so the scheduler's cycle-per-state contract is
	// exercised end to end in tests.
	s.State = nextState(s.State, len(s.Program.States))
	return true
}

// nextState is the trivial round-robin advance a Stepper uses absent a
// real condition evaluator: state 0 always advances to state 1 when
// more than one state exists (mirroring the entry state's unconditional
// loop-enter idiom), and any other state returns to 0.
func nextState(state, numStates int) int {
	if numStates <= 1 {
		return 0
	}
	if state == 0 {
		return 1
	}
	return 0
}

// Cancel unwinds the gear body with a GearDone sentinel.
func (s *Stepper) Cancel(reason string) error {
	s.done = true
	return &GearDone{Reason: reason}
}
