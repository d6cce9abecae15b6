package notify

import (
	"fmt"
	"strings"
)

// Outcome is the terminal artifact of one run: the ordered results plus the
// derived process exit code and a printable summary.
type Outcome struct {
	Results  []SendResult
	ExitCode int
	Summary  string
}

// Aggregate folds the ordered results into an Outcome. The exit code is 0
// iff every channel succeeded, otherwise 1; which channel failed does not
// matter. Pre-dispatch configuration errors (exit 2) are the caller's
// responsibility.
func Aggregate(results []SendResult) Outcome {
	exitCode := 0
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteByte('\n')
		}
		if !r.Ok {
			exitCode = 1
		}
		b.WriteString(SummaryLine(r))
	}
	return Outcome{Results: results, ExitCode: exitCode, Summary: b.String()}
}

// SummaryLine renders one result as a human-readable line.
func SummaryLine(r SendResult) string {
	if r.Ok {
		return fmt.Sprintf("%s -> %s ok (%s)", r.Channel, r.Target, plural(r.Attempts, "attempt"))
	}
	return fmt.Sprintf("%s -> %s failed after %s: %s", r.Channel, r.Target, plural(r.Attempts, "attempt"), r.Error)
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
