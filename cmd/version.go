package cmd

import (
	"fmt"
	"io"
	"os"
)

// runVersion prints version and key environment status. Works without a
// valid configuration so it can be used for diagnostics.
func runVersion(w io.Writer) error {
	fmt.Fprintf(w, "corpus %s\n", AppVersion)
	fmt.Fprintf(w, "Build Time: %s\n", BuildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
	fmt.Fprintln(w)

	geminiKey := os.Getenv("GEMINI_API_KEY")
	if len(geminiKey) >= 8 {
		fmt.Fprintf(w, "GEMINI_API_KEY: %s...%s (configured)\n",
			geminiKey[:4], geminiKey[len(geminiKey)-4:])
	} else if geminiKey != "" {
		fmt.Fprintln(w, "GEMINI_API_KEY: configured")
	} else {
		fmt.Fprintln(w, "GEMINI_API_KEY: not set")
	}

	return nil
}
