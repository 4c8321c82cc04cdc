// package formatter exports play history to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/playrelay/internal/models"
	"github.com/desertthunder/playrelay/internal/shared"
)

const timeLayout = time.RFC3339

// Format is an export format name as accepted on the command line.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name or a file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Export renders plays in format.
func Export(plays []models.Play, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(plays)
	case FormatMarkdown:
		return ExportToMarkdown(plays)
	case FormatText:
		return ExportToText(plays)
	case FormatJSON:
		return shared.MarshalJSON(plays, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ExportToCSV converts plays to CSV with columns: ID, Time, Track, Outcome, Status, Attempts, Refreshed, Detail
func ExportToCSV(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Time", "Track", "Outcome", "Status", "Attempts", "Refreshed", "Detail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, play := range plays {
		record := []string{
			play.ID,
			play.CreatedAt.UTC().Format(timeLayout),
			play.TrackURI,
			play.Outcome,
			strconv.Itoa(play.Status),
			strconv.Itoa(play.Attempts),
			strconv.FormatBool(play.Refreshed),
			play.Detail,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts plays to a Markdown report with a summary and a table
func ExportToMarkdown(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer

	started := 0
	for _, play := range plays {
		if play.Succeeded() {
			started++
		}
	}

	buf.WriteString("# Play History\n\n")
	buf.WriteString(fmt.Sprintf("**Plays**: %d\n", len(plays)))
	buf.WriteString(fmt.Sprintf("**Started**: %d\n\n", started))

	buf.WriteString("| Time | Track | Outcome | Status | Attempts |\n")
	buf.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, play := range plays {
		buf.WriteString(fmt.Sprintf("| %s | `%s` | %s | %d | %d |\n",
			play.CreatedAt.UTC().Format(timeLayout), play.TrackURI, play.Outcome, play.Status, play.Attempts))
	}

	return buf.Bytes(), nil
}

// ExportToText converts plays to plain text, one line per play
func ExportToText(plays []models.Play) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Plays: %d\n\n", len(plays)))
	for i, play := range plays {
		buf.WriteString(fmt.Sprintf("%d. %s %s [%s]", i+1, play.CreatedAt.UTC().Format(timeLayout), play.TrackURI, play.Outcome))
		if play.Detail != "" {
			buf.WriteString(" " + play.Detail)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// WriteExport writes plays to path. An empty format is taken from the file extension.
func WriteExport(plays []models.Play, path string, format Format) error {
	if path == "" {
		return fmt.Errorf("%w: export path", shared.ErrMissingArgument)
	}

	if format == "" {
		f, err := ParseFormat(filepath.Ext(path))
		if err != nil {
			return err
		}
		format = f
	}

	data, err := Export(plays, format)
	if err != nil {
		return fmt.Errorf("failed to generate export: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	return nil
}
