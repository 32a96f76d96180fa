package formatter

import (
	"bytes"
	"fmt"
	"os"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/shared"
)

// DigestToText renders a trailer digest as one line per movie.
func DigestToText(d *models.TrailerDigest) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Trailers: %d found, %d missing, %d failed (of %d)\n\n", d.Found, d.Missing, d.Failed, d.Total))
	for i, res := range d.Results {
		switch {
		case res.Error != "":
			buf.WriteString(fmt.Sprintf("%d. %s ✗ %s\n", i+1, res.Item.Title, res.Error))
		case res.Found():
			buf.WriteString(fmt.Sprintf("%d. %s %s\n", i+1, res.Item.Title, res.Video.URL()))
		default:
			buf.WriteString(fmt.Sprintf("%d. %s -\n", i+1, res.Item.Title))
		}
	}
	return buf.Bytes()
}

// DigestToMarkdown renders a trailer digest as a Markdown table.
func DigestToMarkdown(d *models.TrailerDigest) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Watchlist Trailers\n\n")
	buf.WriteString(fmt.Sprintf("Generated %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04 MST")))
	buf.WriteString("| # | Movie | Video | Type |\n|---|---|---|---|\n")

	for i, res := range d.Results {
		video, kind := "-", "-"
		switch {
		case res.Error != "":
			video = "error: " + res.Error
		case res.Found():
			video = fmt.Sprintf("[%s](%s)", res.Video.Name, res.Video.URL())
			kind = res.Video.Type
		}
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, res.Item.Title, video, kind))
	}
	return buf.Bytes()
}

// WriteTrailerDigest writes a digest in format (json, markdown or txt) to path.
func WriteTrailerDigest(d *models.TrailerDigest, format, path string) error {
	var data []byte
	switch format {
	case FormatJSON:
		var err error
		if data, err = shared.MarshalJSON(d, true); err != nil {
			return fmt.Errorf("failed to marshal digest: %w", err)
		}
	case FormatMarkdown:
		data = DigestToMarkdown(d)
	case FormatText:
		data = DigestToText(d)
	default:
		return fmt.Errorf("%w: unknown digest format %q", shared.ErrInvalidArgument, format)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write digest: %w", err)
	}
	return nil
}
