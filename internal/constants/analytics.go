package constants

const (
	// Minimum number of elapsed periods before a completion rate is reported.
	// Below these floors the rate engine answers "insufficient data".
	MinDailySamples   = 3
	MinWeeklySamples  = 1
	MinMonthlySamples = 1

	// Upper bound on concurrent per-habit computations when summarising an owner.
	SummaryConcurrency = 4

	// PointsPerCompletion is awarded whenever a log transitions to completed.
	PointsPerCompletion = 10
)
