package catalog

import "testing"

func TestCategories(t *testing.T) {
	cats := Categories()
	if len(cats) == 0 {
		t.Fatal("catalog is empty")
	}
	for _, c := range cats {
		if c.ID == "" || c.Name == "" {
			t.Errorf("category missing id or name: %+v", c)
		}
		if len(c.Exams) == 0 {
			t.Errorf("category %s has no exams", c.ID)
		}
		for _, e := range c.Exams {
			if e.ID == "" || e.Name == "" {
				t.Errorf("exam in %s missing id or name: %+v", c.ID, e)
			}
			if len(e.Papers) == 0 {
				t.Errorf("exam %s has no papers", e.ID)
			}
			for _, p := range e.Papers {
				if len(p.Topics) == 0 {
					t.Errorf("paper %q of %s has no topics", p.Name, e.ID)
				}
			}
		}
	}
}

func TestFindExam(t *testing.T) {
	e := FindExam("upsc-cse")
	if e == nil {
		t.Fatal("upsc-cse not found")
	}
	if e.Name != "UPSC Civil Services Examination" {
		t.Errorf("name = %q", e.Name)
	}
	if FindExam("no-such-exam") != nil {
		t.Error("expected nil for unknown exam")
	}
}

func TestTopicID(t *testing.T) {
	if got := TopicID(0, 0); got != "P1-t1" {
		t.Errorf("TopicID(0,0) = %q, want P1-t1", got)
	}
	if got := TopicID(1, 4); got != "P2-t5" {
		t.Errorf("TopicID(1,4) = %q, want P2-t5", got)
	}
}

func TestTopicByID(t *testing.T) {
	e := FindExam("upsc-cse")
	if e == nil {
		t.Fatal("upsc-cse not found")
	}

	if got := e.TopicByID("P1-t1"); got != e.Papers[0].Topics[0] {
		t.Errorf("P1-t1 = %q, want %q", got, e.Papers[0].Topics[0])
	}
	for _, bad := range []string{"", "P0-t1", "P1-t0", "P99-t1", "P1-t99", "garbage"} {
		if got := e.TopicByID(bad); got != "" {
			t.Errorf("TopicByID(%q) = %q, want empty", bad, got)
		}
	}
}

func TestTotalTopics(t *testing.T) {
	e := FindExam("upsc-cse")
	if e == nil {
		t.Fatal("upsc-cse not found")
	}
	want := 0
	for _, p := range e.Papers {
		want += len(p.Topics)
	}
	if got := e.TotalTopics(); got != want {
		t.Errorf("TotalTopics = %d, want %d", got, want)
	}
}
