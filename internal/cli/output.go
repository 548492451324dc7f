// Package cli renders search results and vault status for the loupe command.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/loupe-search/loupe/internal/models"
	"github.com/loupe-search/loupe/pkg/utils"
)

// OutputFormat selects how command output is rendered.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// displaySnippetRunes caps how much of a snippet the text renderer prints.
// The stored snippet can be longer; JSON output carries it in full.
const displaySnippetRunes = 200

// ParseFormat maps an -output flag value to a format.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", string(OutputText):
		return OutputText, nil
	case string(OutputJSON):
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text or json)", s)
	}
}

// WriteSearchResults writes a search response to w in the given format.
// An empty result set is rendered as a message in text mode and as an
// envelope with an empty results array in JSON mode.
func WriteSearchResults(w io.Writer, response *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, response)
	}
	writeSearchResultsText(w, response)
	return nil
}

func writeSearchResultsText(w io.Writer, response *models.SearchResponse) {
	if len(response.Results) == 0 {
		fmt.Fprintf(w, "No results found for: %s\n", response.Query)
		return
	}
	fmt.Fprintf(w, "=== Search Results for: %s ===\n\n", response.Query)
	for i, result := range response.Results {
		writeResultText(w, i+1, result)
	}
}

func writeResultText(w io.Writer, rank int, result *models.SearchResult) {
	title := result.Title
	if title == "" {
		title = result.Path
	}
	fmt.Fprintf(w, "%d. %s\n", rank, title)
	fmt.Fprintf(w, "   Path: %s\n", result.Path)
	if result.Heading != "" {
		fmt.Fprintf(w, "   Section: %s\n", result.Heading)
	}
	if result.Status != "" {
		fmt.Fprintf(w, "   Status: %s\n", result.Status)
	}
	// Cosine distance runs 0..2; a relevance percentage only makes sense
	// inside [0, 1].
	if result.Distance >= 0 && result.Distance <= 1 {
		fmt.Fprintf(w, "   Relevance: %.2f%%\n", (1-result.Distance)*100)
	} else {
		fmt.Fprintf(w, "   Distance: %.4f\n", result.Distance)
	}
	fmt.Fprintf(w, "   Snippet: %s\n\n", utils.TruncateRunes(result.Snippet, displaySnippetRunes))
}

// WriteStatus writes the vault status to w in the given format.
func WriteStatus(w io.Writer, status *models.VaultStatus, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, status)
	}
	fmt.Fprintf(w, "Vault index: %s\n", status.DatabasePath)
	fmt.Fprintf(w, "Notes:       %d\n", status.Notes)
	fmt.Fprintf(w, "Chunks:      %d\n", status.Chunks)
	fmt.Fprintf(w, "Dimensions:  %d\n", status.Dimensions)
	fmt.Fprintf(w, "Disk usage:  %s\n", formatBytes(status.DiskBytes))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
