package catalog

import (
	"strings"

	"github.com/desertthunder/coursedeck/internal/models"
)

// Content-sheet column layout. Columns 1..4 hold comma-separated parallel
// lists aligned by position; columns 5+ are per-user access columns.
const (
	colTopic = iota
	colLabels
	colVideoIDs
	colDescriptions
	colURLs
)

// BuildCatalog transforms raw content-sheet rows into the ordered topic list
// for one viewer.
//
// Row 0 is the header; the column whose header equals userEmail (exact,
// case-sensitive) is the viewer's access column. When the viewer has no
// column every row defaults to open access. Rows whose access cell reads
// "No access" are dropped before any topic is created. Rows sharing a topic
// name merge append-only: later rows contribute videos but the first row's
// access status wins. Within a topic a label already present is skipped.
func BuildCatalog(rows [][]string, userEmail string) []models.Topic {
	if len(rows) == 0 {
		return nil
	}

	accessCol := -1
	for i, header := range rows[0] {
		if header == userEmail {
			accessCol = i
			break
		}
	}

	var topics []models.Topic
	index := map[string]int{}

	for _, row := range rows[1:] {
		name := cell(row, colTopic)
		if name == "" {
			continue
		}

		access := models.AccessGiven
		if accessCol >= 0 {
			access = models.ParseAccessStatus(cell(row, accessCol))
		}
		if access == models.AccessNone {
			continue
		}

		i, ok := index[name]
		if !ok {
			topics = append(topics, models.Topic{Name: name, Access: access})
			i = len(topics) - 1
			index[name] = i
		}
		topic := &topics[i]

		labels := splitList(cell(row, colLabels))
		videoIDs := splitList(cell(row, colVideoIDs))
		descriptions := splitList(cell(row, colDescriptions))
		urls := splitList(cell(row, colURLs))

		for j, label := range labels {
			if label == "" || hasLabel(topic, label) {
				continue
			}
			topic.Videos = append(topic.Videos, models.Video{
				Label:       label,
				VideoID:     entry(videoIDs, j),
				Description: entry(descriptions, j),
				URL:         NormalizeVideoURL(entry(urls, j)),
				Completed:   access == models.AccessFinished,
			})
		}
	}

	return topics
}

// ApplyWatched marks videos completed from the locally persisted watched map.
//
// Remote "Finish" status and local watches are independent mechanisms; a
// video is completed when either says so.
func ApplyWatched(topics []models.Topic, watched map[string]bool) {
	for i := range topics {
		for j := range topics[i].Videos {
			if watched[topics[i].Videos[j].VideoID] {
				topics[i].Videos[j].Completed = true
			}
		}
	}
}

// cell returns row[i], or "" when the row is too short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// splitList splits a comma-separated cell into trimmed entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// entry returns list[i], or "" when the parallel list is ragged.
func entry(list []string, i int) string {
	if i >= len(list) {
		return ""
	}
	return list[i]
}

func hasLabel(topic *models.Topic, label string) bool {
	for _, v := range topic.Videos {
		if v.Label == label {
			return true
		}
	}
	return false
}
