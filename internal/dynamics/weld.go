package dynamics

// WeldJoint rigidly fixes a body to its parent. It has no generalized
// coordinates: the reduction rules degenerate to plain transport through
// the fixed offset.
type WeldJoint struct {
	baseJoint
}

func NewWeldJoint(name string) *WeldJoint {
	return &WeldJoint{baseJoint: newBaseJoint(name, 0)}
}

func (j *WeldJoint) UpdateLocalTransform() {
	j.t = j.fromParent
}

func (j *WeldJoint) UpdateLocalJacobian() {}

func (j *WeldJoint) UpdateLocalJacobianTimeDeriv() {}

func (j *WeldJoint) IntegratePositions(dt float64) {}
