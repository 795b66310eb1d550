package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/coursedeck/internal/catalog"
	"github.com/desertthunder/coursedeck/internal/formatter"
	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadCatalog fetches the viewer's catalog with the local watched overlay
// applied, persisting fresh per-topic summaries as a side effect.
func (r *Runner) loadCatalog(ctx context.Context, ws *workspace) ([]models.Topic, error) {
	topics, err := ws.loader.Load(ctx, ws.current.User().Email)
	if err != nil {
		return nil, r.dropIfRejected(ws.manager, err)
	}

	watched, err := ws.watched.WatchedMap()
	if err != nil {
		r.logger.Warnf("failed to read local watch state: %v", err)
	} else {
		catalog.ApplyWatched(topics, watched)
	}

	summaries := make([]models.TopicProgress, len(topics))
	for i := range topics {
		summaries[i] = topics[i].Progress()
	}
	if err := ws.progress.SaveAll(summaries); err != nil {
		r.logger.Warnf("failed to persist progress snapshots: %v", err)
	}

	return topics, nil
}

// CatalogList lists accessible topics with watch progress.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	topics, err := r.loadCatalog(ctx, ws)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(topics, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Course Catalog — %s", ws.current.User().Email))

	if len(topics) == 0 {
		r.writePlain("No accessible topics.\n")
		return nil
	}

	for _, topic := range topics {
		progress := topic.Progress()
		r.writePlain("\n%s  (%d/%d watched, %d%%)\n", topic.Name, progress.Watched, progress.Total, progress.Percentage)
		for i, video := range topic.Videos {
			mark := " "
			if video.Completed {
				mark = "✓"
			}
			r.writePlain("  %d. [%s] %s\n", i+1, mark, video.Label)
		}
	}

	return nil
}

// CatalogShow prints one topic's videos.
func (r *Runner) CatalogShow(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	topicName := cmd.StringArg("topic")
	if topicName == "" {
		return fmt.Errorf("%w: topic name", shared.ErrMissingArgument)
	}

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	topics, err := r.loadCatalog(ctx, ws)
	if err != nil {
		return err
	}

	for _, topic := range topics {
		if !strings.EqualFold(topic.Name, topicName) {
			continue
		}

		progress := topic.Progress()
		r.writePlainHeader(topic.Name)
		r.writePlain("Progress: %d/%d (%d%%)\n\n", progress.Watched, progress.Total, progress.Percentage)

		for i, video := range topic.Videos {
			mark := " "
			if video.Completed {
				mark = "✓"
			}
			r.writePlain("%d. [%s] %s (%s)\n", i+1, mark, video.Label, video.VideoID)
			if video.Description != "" {
				r.writePlain("   %s\n", video.Description)
			}
			if video.URL != "" {
				r.writePlain("   %s\n", video.URL)
			}
		}
		return nil
	}

	return fmt.Errorf("%w: %s", shared.ErrTopicNotFound, topicName)
}

// CatalogExport writes the catalog to a file in the requested format.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	topics, err := r.loadCatalog(ctx, ws)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	output := cmd.String("output")

	var path string
	switch format {
	case "csv":
		path, err = formatter.WriteCSVExport(topics, output)
	case "markdown", "md":
		path, err = formatter.WriteMarkdownExport(topics, cmd.String("title"), output)
	case "text", "txt":
		path, err = formatter.WriteTextExport(topics, output)
	default:
		return fmt.Errorf("%w: unknown format %q (csv, markdown, text)", shared.ErrInvalidFlag, format)
	}

	if err != nil {
		return err
	}

	r.writePlain("✓ Catalog exported to %s\n", path)
	return nil
}

// CatalogSeed appends the demo course list to the content sheet.
func (r *Runner) CatalogSeed(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	spread := r.config.Spreadsheet
	count, err := catalog.SeedCourses(ctx, ws.gateway, spread.ContentSheet, spread.ContentRange)
	if err != nil {
		return r.dropIfRejected(ws.manager, err)
	}

	r.writePlain("✓ Seeded %d topics\n", count)
	return nil
}
