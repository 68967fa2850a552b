package sim

import "errors"

var (
	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("sim: invalid state (NaN or Inf detected)")

	// ErrStepTooSmall indicates the adaptive timestep fell below MinDt.
	ErrStepTooSmall = errors.New("sim: adaptive timestep below minimum")

	// ErrDimensionMismatch indicates a state or control vector whose length
	// does not match the dynamics.
	ErrDimensionMismatch = errors.New("sim: dimension mismatch between state and dynamics")
)
