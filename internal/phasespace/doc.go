// Package phasespace provides containers for points and trajectories in
// the 6-dimensional space of position and velocity.
//
//   - [W]: packed 6-vector, the integrator's state type
//   - [PhaseSpacePosition]: one timed or untimed point
//   - [Batch]: many points sharing batch-shape semantics
//   - [Composite]: keyed, insertion-ordered union of batches
//   - [Orbit]: an integrated trajectory tagged with its potential
//   - [MockStream]: released stream particles with per-particle release times
//
// All containers are immutable snapshots; operations that look like
// mutation return new values.
package phasespace
