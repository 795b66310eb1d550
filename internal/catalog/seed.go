package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursedeck/internal/models"
)

// seedTopics is the demo course list appended by the one-shot seed command.
//
// Descriptions stay comma-free: the content sheet packs each topic's videos
// into comma-separated cells.
var seedTopics = []models.Topic{
	{
		Name: "Introduction to React",
		Videos: []models.Video{
			{Label: "Getting Started with React", VideoID: "1-1", Description: "Components and props and state management basics", URL: "https://www.youtube.com/embed/7CqJlxBYj-M"},
			{Label: "React Hooks", VideoID: "1-2", Description: "Understanding and implementing hooks for functional components", URL: "https://www.youtube.com/embed/9xhKH43llhU"},
			{Label: "React Router", VideoID: "1-3", Description: "Implementing navigation and routing in React applications", URL: "https://www.youtube.com/embed/0cSVuySEB0A"},
		},
	},
	{
		Name: "Advanced JavaScript",
		Videos: []models.Video{
			{Label: "ES6+ Features", VideoID: "2-1", Description: "Exploring modern JavaScript features and syntax", URL: "https://www.youtube.com/embed/NCwa_xi0Uuc"},
			{Label: "Async Programming", VideoID: "2-2", Description: "Understanding asynchronous programming in JavaScript", URL: "https://www.youtube.com/embed/8aGhZQko6bQ"},
		},
	},
	{
		Name: "CSS and Styling",
		Videos: []models.Video{
			{Label: "CSS Grid", VideoID: "3-1", Description: "Mastering the CSS Grid layout system", URL: "https://www.youtube.com/embed/9zBsdzdE4sM"},
			{Label: "Flexbox", VideoID: "3-2", Description: "Understanding and implementing Flexbox layouts", URL: "https://www.youtube.com/embed/JJSoEo8JSnc"},
		},
	},
}

// SeedCourses appends the demo course list to the content sheet, one row per
// topic. Existing rows are never touched; re-running the command appends
// duplicates, so it is intended for empty sheets only.
func SeedCourses(ctx context.Context, gateway Gateway, sheet, rangeSpec string) (int, error) {
	for i, topic := range seedTopics {
		if err := gateway.AppendRow(ctx, sheet, rangeSpec, TopicRow(topic)); err != nil {
			return i, fmt.Errorf("failed to seed topic %q: %w", topic.Name, err)
		}
	}
	return len(seedTopics), nil
}

// TopicRow packs a topic into the content sheet's row layout.
func TopicRow(topic models.Topic) []string {
	labels := make([]string, len(topic.Videos))
	ids := make([]string, len(topic.Videos))
	descriptions := make([]string, len(topic.Videos))
	urls := make([]string, len(topic.Videos))

	for i, v := range topic.Videos {
		labels[i] = v.Label
		ids[i] = v.VideoID
		descriptions[i] = v.Description
		urls[i] = v.URL
	}

	return []string{
		topic.Name,
		strings.Join(labels, ","),
		strings.Join(ids, ","),
		strings.Join(descriptions, ","),
		strings.Join(urls, ","),
	}
}
