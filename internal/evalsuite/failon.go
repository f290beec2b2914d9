package evalsuite

// FailOn controls eval's exit-code policy.
type FailOn string

const (
	FailOnNone        FailOn = "none"
	FailOnError       FailOn = "error"
	FailOnMiss        FailOn = "miss"
	FailOnMissOrError FailOn = "miss_or_error"
)

// ExitCode decides eval's process exit code given the scored cases: 0
// unless --fail-on's condition is met, in which case 1.
func ExitCode(mode FailOn, results []CaseResult) int {
	hasError := false
	hasMiss := false
	for _, r := range results {
		if r.Error != "" {
			hasError = true
		}
		if !r.Hit {
			hasMiss = true
		}
	}
	switch mode {
	case FailOnError:
		if hasError {
			return 1
		}
	case FailOnMiss:
		if hasMiss {
			return 1
		}
	case FailOnMissOrError:
		if hasError || hasMiss {
			return 1
		}
	}
	return 0
}
