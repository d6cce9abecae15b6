package cli

// ShouldTrigger evaluates the trigger condition against the job's exit code.
// Dispatch happens only when this is true.
func ShouldTrigger(on string, exitCode int) bool {
	switch on {
	case "always":
		return true
	case "success":
		return exitCode == 0
	case "failure":
		return exitCode != 0
	default:
		return false
	}
}
