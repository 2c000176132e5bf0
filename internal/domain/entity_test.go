package domain

import "testing"

func TestParseEntityKind(t *testing.T) {
	for _, s := range []string{"lesson", "news", "meeting"} {
		if _, ok := ParseEntityKind(s); !ok {
			t.Errorf("expected %q to parse", s)
		}
	}
	for _, s := range []string{"", "Lesson", "posts", "admin"} {
		if _, ok := ParseEntityKind(s); ok {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestProjectStatus(t *testing.T) {
	id := uint64(1)
	cases := []struct {
		name               string
		current, pending   *uint64
		archiveOnReject    bool
		want               EntityStatus
	}{
		{"pending wins over current", &id, &id, true, EntityPendingReview},
		{"pending only", nil, &id, true, EntityPendingReview},
		{"current only", &id, nil, true, EntityActive},
		{"neither, archive policy", nil, nil, true, EntityArchived},
		{"neither, resubmit policy", nil, nil, false, EntityNoContent},
	}
	for _, tc := range cases {
		if got := ProjectStatus(tc.current, tc.pending, tc.archiveOnReject); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}
