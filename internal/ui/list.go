package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/coursedeck/internal/models"
)

var (
	_ list.Item = topicItem{}
	_ list.Item = videoItem{}
)

// topicItem wraps [models.Topic] to implement [list.Item].
type topicItem struct {
	topic models.Topic
}

func (i topicItem) FilterValue() string { return i.topic.Name }
func (i topicItem) Title() string       { return i.topic.Name }
func (i topicItem) Description() string {
	progress := i.topic.Progress()
	desc := fmt.Sprintf("%d videos", progress.Total)
	if progress.Watched > 0 {
		desc = fmt.Sprintf("%s • %d watched (%d%%)", desc, progress.Watched, progress.Percentage)
	}
	return desc
}

// videoItem wraps [models.Video] to implement [list.Item].
type videoItem struct {
	video models.Video
}

func (i videoItem) FilterValue() string { return i.video.Label }
func (i videoItem) Title() string {
	if i.video.Completed {
		return fmt.Sprintf("✓ %s", i.video.Label)
	}
	return i.video.Label
}
func (i videoItem) Description() string {
	desc := i.video.Description
	if desc == "" {
		desc = i.video.URL
	}
	return desc
}
