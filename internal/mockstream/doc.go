// Package mockstream generates mock tidal-stream realizations.
//
// A [Generator] integrates a progenitor's orbit through a potential,
// samples particle-release initial conditions from a [StreamDF] at every
// stripping time, and integrates each released particle to the final time,
// producing the leading and trailing arms of the stream.
//
// Two particle-integration strategies exist and produce equal results up
// to solver tolerance: [StrategyScan] walks stripping times in release
// order, [StrategyBatched] fans all particles out over a worker pool. The
// choice is a performance knob, never a semantic one.
package mockstream
