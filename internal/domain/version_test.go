package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to VersionStatus
		want     bool
	}{
		{VersionPendingReview, VersionPublished, true},
		{VersionPendingReview, VersionRejected, true},
		{VersionPendingReview, VersionArchived, true},
		{VersionPublished, VersionRejected, false},
		{VersionPublished, VersionPendingReview, false},
		{VersionRejected, VersionPublished, false},
		{VersionArchived, VersionPendingReview, false},
		{VersionPendingReview, VersionPendingReview, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestTerminal(t *testing.T) {
	if VersionPendingReview.Terminal() {
		t.Error("pending_review must not be terminal")
	}
	for _, s := range []VersionStatus{VersionPublished, VersionRejected, VersionArchived} {
		if !s.Terminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
