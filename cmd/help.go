package cmd

import (
	"fmt"
	"io"
)

// printHelp writes the usage message.
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "corpus - ask questions about your own documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  corpus add <path>...          Index local files (text, pdf, csv)")
	fmt.Fprintln(w, "  corpus add-url <url>...       Fetch and index web pages")
	fmt.Fprintln(w, "  corpus ask [--stream] <q>     Answer a question from the index")
	fmt.Fprintln(w, "  corpus docs                   List indexed documents")
	fmt.Fprintln(w, "  corpus rm <id>                Remove a document and its chunks")
	fmt.Fprintln(w, "  corpus version                Show version information")
	fmt.Fprintln(w, "  corpus help                   Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment Variables:")
	fmt.Fprintln(w, "  GEMINI_API_KEY     Required with the gemini provider")
	fmt.Fprintln(w, "  DATABASE_URL       Optional: overrides the postgres settings")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration file: ~/.corpus/config.yaml")
}
