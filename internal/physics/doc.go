// Package physics is a small 2D rigid-body engine for circles hanging from
// fixed anchors.
//
// A [World] holds dynamic or kinematic circles ([Body]) and distance
// constraints ([Constraint]) from a fixed anchor to a body centre. Each call
// to [World.Step] splits the frame into substeps. A substep
//
//   - integrates gravity into every dynamic body,
//   - projects bodies back onto their constraint circles,
//   - derives velocities from the corrected positions,
//   - resolves circle contacts with sequential impulses.
//
// Contacts are inclusive: two circles exactly touching are in contact. Only
// pairs approaching faster than [World.RestThreshold] get a restitution
// target; resting contacts are solved to zero relative velocity, so a row of
// touching circles moves as one cluster while a row with a small gap passes
// momentum along one collision at a time.
//
//	w := physics.NewWorld()
//	id := w.CreateBody(physics.BodyDef{Position: dynamo.V(0, 250), Radius: 25, Mass: 10})
//	w.CreateConstraint(physics.ConstraintDef{Anchor: dynamo.V(0, 0), Body: id, Length: 250})
//	w.Step(1.0 / 60)
package physics
