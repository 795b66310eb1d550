package models

import "testing"

func TestParseAccessStatus(t *testing.T) {
	tc := []struct {
		name string
		cell string
		want AccessStatus
	}{
		{name: "no access", cell: "No access", want: AccessNone},
		{name: "finish", cell: "Finish", want: AccessFinished},
		{name: "access given", cell: "Access Given", want: AccessGiven},
		{name: "blank defaults to given", cell: "", want: AccessGiven},
		{name: "unknown defaults to given", cell: "whatever", want: AccessGiven},
		{name: "case sensitive", cell: "no access", want: AccessGiven},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseAccessStatus(tt.cell); got != tt.want {
				t.Errorf("ParseAccessStatus(%q) = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestAccessStatusCell(t *testing.T) {
	for _, status := range []AccessStatus{AccessGiven, AccessNone, AccessFinished} {
		if got := ParseAccessStatus(status.Cell()); got != status {
			t.Errorf("round trip failed for %v: cell %q parsed as %v", status, status.Cell(), got)
		}
	}
}

func TestTopicProgress(t *testing.T) {
	t.Run("Empty Topic", func(t *testing.T) {
		topic := Topic{Name: "T"}
		p := topic.Progress()
		if p.Total != 0 || p.Watched != 0 || p.Percentage != 0 {
			t.Errorf("expected zeroed progress, got %+v", p)
		}
	})

	t.Run("Partial Completion", func(t *testing.T) {
		topic := Topic{
			Name: "T",
			Videos: []Video{
				{VideoID: "a", Completed: true},
				{VideoID: "b"},
				{VideoID: "c", Completed: true},
			},
		}
		p := topic.Progress()
		if p.Total != 3 || p.Watched != 2 {
			t.Errorf("expected 2/3 watched, got %+v", p)
		}
		if p.Percentage != 67 {
			t.Errorf("expected 67%%, got %d", p.Percentage)
		}
	})
}

func TestTopicFind(t *testing.T) {
	topic := Topic{Videos: []Video{{VideoID: "id1"}, {VideoID: "id2"}}}

	if v := topic.Find("id2"); v == nil || v.VideoID != "id2" {
		t.Errorf("expected to find id2, got %v", v)
	}
	if v := topic.Find("missing"); v != nil {
		t.Errorf("expected nil for missing video, got %v", v)
	}

	// Find returns a mutable reference into the topic
	topic.Find("id1").Completed = true
	if !topic.Videos[0].Completed {
		t.Error("expected mutation through Find to stick")
	}
}

func TestSessionValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		s := NewSession(User{Name: "A", Email: "a@x.com"}, "tok")
		if err := s.Validate(); err != nil {
			t.Errorf("expected valid session, got %v", err)
		}
	})

	t.Run("Missing Email", func(t *testing.T) {
		s := NewSession(User{Name: "A"}, "tok")
		if err := s.Validate(); err == nil {
			t.Error("expected error for missing email")
		}
	})

	t.Run("Missing Token", func(t *testing.T) {
		s := NewSession(User{Email: "a@x.com"}, "")
		if err := s.Validate(); err == nil {
			t.Error("expected error for missing token")
		}
	})
}
