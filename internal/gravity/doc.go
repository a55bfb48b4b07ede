// Package gravity provides gravitational potential models and their
// algebraic composition.
//
// Every model implements the [Potential] interface, exposing potential
// energy, gradient (the negative of acceleration), mass density and the
// Hessian as functions of position and time:
//
//   - [Kepler]: point mass
//   - [Hernquist]: spheroid with an inner cusp
//   - [NFW]: dark-matter halo
//   - [MiyamotoNagai]: flattened disk
//
// Positions and times are expressed in the potential's unit system.
// Coefficients are [param.Parameter] values, so any of them may vary with
// time. Potentials are immutable once constructed.
//
// Multiple potentials sharing one unit system combine into a [Composite]
// whose fields are the sums of its components':
//
//	disk, _ := gravity.NewMiyamotoNagai(...)
//	halo, _ := gravity.NewNFW(...)
//	total, _ := gravity.Combine(disk, halo)
package gravity
