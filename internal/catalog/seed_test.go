package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	testutils "github.com/desertthunder/coursedeck/internal/testing"
)

func TestSeedCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("Appends One Row Per Topic", func(t *testing.T) {
		gateway := &testutils.FakeGateway{}

		count, err := SeedCourses(ctx, gateway, "Sheet1", "A:Z")
		if err != nil {
			t.Fatalf("SeedCourses failed: %v", err)
		}
		if count != len(seedTopics) {
			t.Errorf("expected %d topics seeded, got %d", len(seedTopics), count)
		}
		if len(gateway.Appended) != len(seedTopics) {
			t.Fatalf("expected %d appended rows, got %d", len(seedTopics), len(gateway.Appended))
		}

		first := gateway.Appended[0]
		if first[0] != "Introduction to React" {
			t.Errorf("unexpected first topic %s", first[0])
		}
		if got := len(strings.Split(first[2], ",")); got != 3 {
			t.Errorf("expected 3 video ids in first row, got %d", got)
		}
	})

	t.Run("Seeded Rows Rebuild Cleanly", func(t *testing.T) {
		gateway := &testutils.FakeGateway{}
		if _, err := SeedCourses(ctx, gateway, "Sheet1", "A:Z"); err != nil {
			t.Fatalf("SeedCourses failed: %v", err)
		}

		rows := append([][]string{header()}, gateway.Appended...)
		topics := BuildCatalog(rows, "a@x.com")
		if len(topics) != len(seedTopics) {
			t.Fatalf("expected %d topics, got %d", len(seedTopics), len(topics))
		}
		for i, topic := range topics {
			if len(topic.Videos) != len(seedTopics[i].Videos) {
				t.Errorf("topic %s: expected %d videos, got %d", topic.Name, len(seedTopics[i].Videos), len(topic.Videos))
			}
		}
	})

	t.Run("Stops On Append Failure", func(t *testing.T) {
		gateway := &testutils.FakeGateway{AppendErr: errors.New("quota exceeded")}

		count, err := SeedCourses(ctx, gateway, "Sheet1", "A:Z")
		if err == nil {
			t.Fatal("expected error from failed append")
		}
		if count != 0 {
			t.Errorf("expected zero topics seeded, got %d", count)
		}
	})
}

func TestTopicRow(t *testing.T) {
	row := TopicRow(seedTopics[1])

	if row[0] != "Advanced JavaScript" {
		t.Errorf("unexpected topic name %s", row[0])
	}
	if row[1] != "ES6+ Features,Async Programming" {
		t.Errorf("unexpected labels %s", row[1])
	}
	if row[2] != "2-1,2-2" {
		t.Errorf("unexpected ids %s", row[2])
	}
}
