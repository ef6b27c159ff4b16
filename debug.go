package physics

import (
	"io"
	"log"
	"os"
)

// Logger receives the engine's rare diagnostics. It is never used on the happy path.
var Logger = log.New(os.Stderr, "physics: ", log.LstdFlags)

// SetLogger redirects diagnostics, e.g. to a file when a UI owns the terminal.
func SetLogger(w io.Writer) {
	Logger.SetOutput(w)
}

func warn(format string, args ...interface{}) {
	Logger.Printf("Warning: "+format, args...)
}
