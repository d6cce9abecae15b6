package cli

import (
	"fmt"
	"io"
	"os"
	"os/user"
	"time"

	"github.com/briandowns/spinner"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// passwordReader is a test hook; term.ReadPassword needs a real terminal.
var passwordReader = func(fd int) ([]byte, error) { return term.ReadPassword(fd) }

// promptSMTPPassword reads the SMTP password interactively without echo.
// A failed read (no terminal, closed stdin) yields an empty password rather
// than aborting the run.
func promptSMTPPassword(w io.Writer) string {
	fmt.Fprint(w, "SMTP password: ")
	pass, err := passwordReader(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return ""
	}
	return string(pass)
}

// newLogger builds the console logger for one run. Engine logs go to
// stderr so they never mix with the result lines on stdout; verbose mode
// lowers the level to debug.
func newLogger(verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level)
	return zap.New(core)
}

// startSpinner shows a spinner on stderr while dispatch is in flight.
// Suppressed when quiet is requested or stderr is not a terminal.
func startSpinner(quiet bool) *spinner.Spinner {
	if quiet || !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Writer = os.Stderr
	s.Suffix = " sending notifications..."
	s.Start()
	return s
}

// hostname returns the local hostname, empty-tolerant.
func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}

// username resolves the invoking user, falling back to the environment for
// static builds where user.Current can fail.
func username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	if v := os.Getenv("USER"); v != "" {
		return v
	}
	if v := os.Getenv("USERNAME"); v != "" {
		return v
	}
	return "unknown"
}
