// Package spatial implements the 6-dimensional spatial vector algebra used
// by the articulated-body dynamics code: rigid transforms, twists and
// wrenches, adjoint maps between frames, spatial cross products, and the
// exponential/logarithm maps on SE(3).
//
// Convention: the angular component comes first. A twist is (w, v) with w
// the angular velocity and v the linear velocity; a wrench is (m, f) with m
// the moment and f the force. All quantities are expressed in the frame of
// the body that owns them unless stated otherwise.
package spatial
