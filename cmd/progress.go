package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/coursedeck/internal/models"
	"github.com/desertthunder/coursedeck/internal/shared"
	"github.com/urfave/cli/v3"
)

// ProgressToggle flips completion for one video and syncs it to the spreadsheet.
func (r *Runner) ProgressToggle(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	topicName := cmd.String("topic")
	videoID := cmd.String("video")

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	topics, err := r.loadCatalog(ctx, ws)
	if err != nil {
		return err
	}

	var topic *models.Topic
	for i := range topics {
		if strings.EqualFold(topics[i].Name, topicName) {
			topic = &topics[i]
			break
		}
	}
	if topic == nil {
		return fmt.Errorf("%w: %s", shared.ErrTopicNotFound, topicName)
	}

	video := topic.Find(videoID)
	if video == nil {
		return fmt.Errorf("%w: %s in topic %s", shared.ErrVideoNotFound, videoID, topic.Name)
	}

	email := ws.current.User().Email
	completed, err := ws.syncer.Toggle(ctx, email, topic.Name, videoID, video.Completed)
	if err != nil {
		return r.dropIfRejected(ws.manager, err)
	}

	if completed {
		if err := ws.watched.Create(models.NewWatchedVideo(0, topic.Name, videoID)); err != nil {
			r.logger.Warnf("failed to record watched video locally: %v", err)
		}
	} else if err := ws.watched.Delete(videoID); err != nil {
		r.logger.Debugf("no local watch record to remove: %v", err)
	}

	video.Completed = completed
	if err := ws.progress.Save(topic.Progress()); err != nil {
		r.logger.Warnf("failed to update progress snapshot: %v", err)
	}

	if completed {
		r.writePlain("✓ Marked %q as watched\n", video.Label)
	} else {
		r.writePlain("✓ Marked %q as unwatched\n", video.Label)
	}

	progress := topic.Progress()
	r.writePlain("%s: %d/%d watched (%d%%)\n", topic.Name, progress.Watched, progress.Total, progress.Percentage)
	return nil
}

// ProgressSummary prints per-topic watch summaries.
//
// Falls back to the locally stored snapshots when the spreadsheet is
// unreachable, so progress stays visible offline.
func (r *Runner) ProgressSummary(ctx context.Context, cmd *cli.Command) error {
	r.loadConfig(cmd)

	ws, err := r.workspace(ctx)
	if err != nil {
		return err
	}

	var summaries []models.TopicProgress

	topics, err := r.loadCatalog(ctx, ws)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) || errors.Is(err, shared.ErrNotAuthenticated) {
			return err
		}

		r.logger.Warnf("catalog unavailable, showing cached progress: %v", err)
		if summaries, err = ws.progress.List(); err != nil {
			return err
		}
	} else {
		summaries = make([]models.TopicProgress, len(topics))
		for i := range topics {
			summaries[i] = topics[i].Progress()
		}
	}

	if cmd.Bool("json") {
		return r.writeJSON(summaries, true)
	}

	r.writePlainHeader("Watch Progress")

	if len(summaries) == 0 {
		r.writePlain("No progress recorded.\n")
		return nil
	}

	for _, s := range summaries {
		r.writePlain("%-40s %d/%d (%d%%)\n", s.Topic, s.Watched, s.Total, s.Percentage)
	}

	return nil
}
