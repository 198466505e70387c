// Package analysis extracts periodic structure from recorded cradle runs.
//
//   - [PowerSpectrum]: magnitude spectrum of a series, mean removed
//   - [DominantPeriod]: period of the strongest oscillation in a series
//   - [GeneratePhasePortrait]: position against velocity for one bob
//   - [SwingSummary]: amplitude and period per bob
//
// Series come from [session.Recording.Series], sampled once per frame:
//
//	period, err := analysis.DominantPeriod(rec.Series(4), 1.0/60)
package analysis
