// package formatter provides functions to export catalog data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/coursedeck/internal/models"
)

// ExportToCSV converts a catalog to CSV format with one row per video.
//
// Columns: Topic, Label, VideoID, Description, URL, Completed
func ExportToCSV(topics []models.Topic) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Topic", "Label", "VideoID", "Description", "URL", "Completed"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, topic := range topics {
		for _, video := range topic.Videos {
			record := []string{
				topic.Name,
				video.Label,
				video.VideoID,
				video.Description,
				video.URL,
				strconv.FormatBool(video.Completed),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a catalog to Markdown with one checklist per topic.
func ExportToMarkdown(topics []models.Topic, title string) ([]byte, error) {
	var buf bytes.Buffer

	if title != "" {
		buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	}

	for _, topic := range topics {
		progress := topic.Progress()
		buf.WriteString(fmt.Sprintf("## %s\n\n", topic.Name))
		buf.WriteString(fmt.Sprintf("**Progress**: %d/%d (%d%%)\n\n", progress.Watched, progress.Total, progress.Percentage))

		for _, video := range topic.Videos {
			mark := " "
			if video.Completed {
				mark = "x"
			}
			if video.URL != "" {
				buf.WriteString(fmt.Sprintf("- [%s] [%s](%s)\n", mark, video.Label, video.URL))
			} else {
				buf.WriteString(fmt.Sprintf("- [%s] %s\n", mark, video.Label))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a catalog to plain text format
func ExportToText(topics []models.Topic) ([]byte, error) {
	var buf bytes.Buffer

	for _, topic := range topics {
		progress := topic.Progress()
		buf.WriteString(fmt.Sprintf("%s (%d/%d watched)\n", topic.Name, progress.Watched, progress.Total))

		for i, video := range topic.Videos {
			mark := "  "
			if video.Completed {
				mark = "✓ "
			}
			buf.WriteString(fmt.Sprintf("  %d. %s%s\n", i+1, mark, video.Label))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ToProgressJSON generates an indented JSON representation of per-topic summaries
func ToProgressJSON(topics []models.Topic) ([]byte, error) {
	progress := make([]models.TopicProgress, len(topics))
	for i := range topics {
		progress[i] = topics[i].Progress()
	}

	data, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}

	return data, nil
}

// WriteCSVExport exports a catalog to a CSV file.
//
// Defaults to catalog.csv as the filename.
func WriteCSVExport(topics []models.Topic, filepath string) (string, error) {
	if filepath == "" {
		filepath = "catalog.csv"
	}

	csvData, err := ExportToCSV(topics)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownExport exports a catalog to a Markdown file.
//
// Defaults to catalog.md as the filename.
func WriteMarkdownExport(topics []models.Topic, title, filepath string) (string, error) {
	if filepath == "" {
		filepath = "catalog.md"
	}

	mdData, err := ExportToMarkdown(topics, title)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a catalog to plain text format.
//
// Defaults to catalog.txt as the filename.
func WriteTextExport(topics []models.Topic, filepath string) (string, error) {
	if filepath == "" {
		filepath = "catalog.txt"
	}

	textData, err := ExportToText(topics)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
