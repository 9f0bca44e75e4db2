package pipeline

import "fmt"

// RetryBudget is the rephrase-and-retry allowance for a whole run. It is shared by every
// stage and variation and never refills.
type RetryBudget struct {
	max  int
	used int
}

func NewRetryBudget(max int) *RetryBudget {
	if max < 0 {
		max = 0
	}
	return &RetryBudget{max: max}
}

// Spend records one failed generation. It reports whether another attempt is allowed.
func (b *RetryBudget) Spend() bool {
	b.used++
	return b.used < b.max
}

func (b *RetryBudget) Used() int { return b.used }

func (b *RetryBudget) Max() int { return b.max }

func (b *RetryBudget) Remaining() int {
	if b.used >= b.max {
		return 0
	}
	return b.max - b.used
}

// ExhaustedError ends a run once the retry budget is spent.
type ExhaustedError struct {
	Max  int
	Last error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("maximum number of generation retries exceeded (%d)", e.Max)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }
