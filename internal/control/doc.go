// Package control provides joint-space controllers for articulated
// skeletons.
//
// Controllers implement the [sim.Controller] interface and compute one
// generalized force per coordinate:
//
//   - [PD]: joint-space proportional-derivative tracking
//   - [GravityComp]: cancels gravity and velocity-product forces
//   - [LQR]: state-feedback with a precomputed gain matrix
//   - [None]: zero control
package control
