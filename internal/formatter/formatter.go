// package formatter exports watchlists and trailer digests to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/cinewave/internal/models"
	"github.com/desertthunder/cinewave/internal/services"
	"github.com/desertthunder/cinewave/internal/shared"
)

// Supported export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
)

// Formats lists the accepted export formats.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// Extension returns the file extension for format.
func Extension(format string) string {
	if format == FormatMarkdown {
		return "md"
	}
	return format
}

// ExportToCSV converts a watchlist to CSV format with columns: ID, Title, Year, Rating, Release Date, Poster
func ExportToCSV(items []models.WatchlistItem, imageBase string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Rating", "Release Date", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		record := []string{
			strconv.Itoa(item.ID),
			item.Title,
			shared.ReleaseYear(item.ReleaseDate),
			strconv.FormatFloat(item.VoteAverage, 'f', 1, 64),
			item.ReleaseDate,
			services.ImageURL(imageBase, item.PosterPath, services.ImagePoster, services.SizeOriginal),
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

// ExportToMarkdown converts a watchlist to Markdown with a poster image per movie.
//
// posters maps movie ids to local image files; ids without an entry link the CDN poster instead.
func ExportToMarkdown(items []models.WatchlistItem, imageBase string, posters map[int]string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Watchlist\n\n")
	buf.WriteString(fmt.Sprintf("**Movies**: %d\n\n", len(items)))

	for i, item := range items {
		buf.WriteString(fmt.Sprintf("## %d. %s%s\n\n", i+1, item.Title, yearSuffix(item)))

		poster := posters[item.ID]
		if poster == "" {
			poster = services.ImageURL(imageBase, item.PosterPath, services.ImagePoster, services.SizeSmall)
		}
		if poster != "" {
			buf.WriteString(fmt.Sprintf("![%s](%s)\n\n", item.Title, poster))
		}

		buf.WriteString(fmt.Sprintf("**Rating**: %s\n\n", shared.FormatRating(item.VoteAverage)))
		if item.Overview != "" {
			buf.WriteString(item.Overview + "\n\n")
		}
	}

	return buf.Bytes(), nil
}

func yearSuffix(item models.WatchlistItem) string {
	if year := shared.ReleaseYear(item.ReleaseDate); year != "" {
		return " (" + year + ")"
	}
	return ""
}

// ExportToText converts a watchlist to plain text format
func ExportToText(items []models.WatchlistItem) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Watchlist: %d movies\n\n", len(items)))
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s%s %s\n", i+1, item.Title, yearSuffix(item), shared.FormatRating(item.VoteAverage)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a watchlist to indented JSON using the persisted field names.
func ExportToJSON(items []models.WatchlistItem) ([]byte, error) {
	if items == nil {
		items = []models.WatchlistItem{}
	}
	return shared.MarshalJSON(items, true)
}

// Export renders items in format.
func Export(items []models.WatchlistItem, format, imageBase string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(items)
	case FormatCSV:
		return ExportToCSV(items, imageBase)
	case FormatMarkdown:
		return ExportToMarkdown(items, imageBase, nil)
	case FormatText:
		return ExportToText(items)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (want one of %v)", shared.ErrInvalidArgument, format, Formats)
	}
}

// WriteExport renders items in format and writes them to path.
//
// Defaults to watchlist.{ext} as the filename.
func WriteExport(items []models.WatchlistItem, format, path, imageBase string) (string, error) {
	data, err := Export(items, format, imageBase)
	if err != nil {
		return "", err
	}

	if path == "" {
		path = "watchlist." + Extension(format)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory string
	Files     []string
	Posters   []string
}

// WriteMarkdownExport exports a watchlist to Markdown format in a dedicated directory.
//
// When downloadPosters is set, posters are saved next to the README and linked locally; failed
// downloads fall back to the CDN link.
// Creates a directory structure: {dir}/README.md and optionally {dir}/posters/{id}.jpg
func WriteMarkdownExport(items []models.WatchlistItem, outputDir, imageBase string, downloadPosters bool) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "watchlist"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
		Posters:   []string{},
	}

	posters := map[int]string{}
	if downloadPosters {
		posterDir := filepath.Join(outputDir, "posters")
		if err := os.MkdirAll(posterDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create poster directory: %w", err)
		}

		for _, item := range items {
			url := services.ImageURL(imageBase, item.PosterPath, services.ImagePoster, services.SizeSmall)
			if url == "" {
				continue
			}
			imageData, err := DownloadImage(url)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to download poster for %s: %v\n", item.Title, err)
				continue
			}

			name := fmt.Sprintf("%d.jpg", item.ID)
			path := filepath.Join(posterDir, name)
			if err := os.WriteFile(path, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save poster for %s: %v\n", item.Title, err)
				continue
			}
			posters[item.ID] = "posters/" + name
			result.Posters = append(result.Posters, path)
			result.Files = append(result.Files, path)
		}
	}

	mdData, err := ExportToMarkdown(items, imageBase, posters)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
