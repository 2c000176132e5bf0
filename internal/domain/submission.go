package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/corplearn/corplearn-backend/internal/common"
)

// Submission is a typed, validated content payload for one entity kind.
// The workflow engine is written once against this interface; each kind
// contributes its own field set and validation.
type Submission interface {
	Kind() EntityKind
	// Validate runs before any store mutation and returns
	// common.ErrValidation-wrapped errors for malformed payloads.
	Validate() error
	// Fill copies the content fields onto a fresh version row.
	Fill(v *ContentVersion)
}

// LessonSubmission is the payload for lesson content.
type LessonSubmission struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	AuthorName  string `json:"author_name"`
	SortOrder   int    `json:"sort_order"`
}

func (s *LessonSubmission) Kind() EntityKind { return KindLesson }

func (s *LessonSubmission) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: lesson name is required", common.ErrValidation)
	}
	if strings.TrimSpace(s.Description) == "" {
		return fmt.Errorf("%w: lesson description is required", common.ErrValidation)
	}
	return nil
}

func (s *LessonSubmission) Fill(v *ContentVersion) {
	v.Title = s.Name
	v.Body = s.Description
	v.CoverImageURL = s.ImageURL
	v.AuthorName = s.AuthorName
	v.SortOrder = s.SortOrder
}

// NewsSubmission is the payload for news content.
type NewsSubmission struct {
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	CoverImageURL string `json:"cover_image_url"`
	ResourceURL   string `json:"resource_url"`
}

func (s *NewsSubmission) Kind() EntityKind { return KindNews }

func (s *NewsSubmission) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: news title is required", common.ErrValidation)
	}
	if strings.TrimSpace(s.Summary) == "" {
		return fmt.Errorf("%w: news summary is required", common.ErrValidation)
	}
	return nil
}

func (s *NewsSubmission) Fill(v *ContentVersion) {
	v.Title = s.Title
	v.Body = s.Summary
	v.CoverImageURL = s.CoverImageURL
	v.ResourceURL = s.ResourceURL
}

// MeetingSubmission is the payload for meeting content.
type MeetingSubmission struct {
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	CoverImageURL string     `json:"cover_image_url"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
}

func (s *MeetingSubmission) Kind() EntityKind { return KindMeeting }

func (s *MeetingSubmission) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: meeting name is required", common.ErrValidation)
	}
	if s.StartsAt == nil || s.EndsAt == nil {
		return fmt.Errorf("%w: meeting start and end time are required", common.ErrValidation)
	}
	if !s.EndsAt.After(*s.StartsAt) {
		return fmt.Errorf("%w: meeting must end after it starts", common.ErrValidation)
	}
	return nil
}

func (s *MeetingSubmission) Fill(v *ContentVersion) {
	v.Title = s.Name
	v.Body = s.Description
	v.CoverImageURL = s.CoverImageURL
	v.StartsAt = s.StartsAt
	v.EndsAt = s.EndsAt
}
