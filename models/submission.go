package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SubmissionTypeText  = "text"
	SubmissionTypePhoto = "photo"
	SubmissionTypeVideo = "video"
)

const (
	SubmissionStatusDraft   = "draft"
	SubmissionStatusPending = "pending"
	SubmissionStatusGraded  = "graded"
)

// Submission is one player's answer evidence for one question. Status only
// moves forward: draft -> pending -> graded. Score is set exactly when the
// submission is graded.
type Submission struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	PlayerID   uint           `json:"player_id" gorm:"not null;index"`
	QuestionID uint           `json:"question_id" gorm:"not null;index"`
	Type       string         `json:"type" gorm:"not null"`
	AnswerText *string        `json:"answer_text"`
	PhotoRefs  datatypes.JSON `json:"photo_refs" gorm:"not null;default:'[]'"`
	VideoRef   *string        `json:"video_ref"`
	Status     string         `json:"status" gorm:"not null;default:'draft'"`
	Score      *int           `json:"score"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relationships
	Player   Player   `json:"player,omitempty"`
	Question Question `json:"question,omitempty"`
}

// StatusRank orders submission statuses along the draft -> pending -> graded
// progression; a transition is legal only if the rank does not decrease.
func StatusRank(status string) int {
	switch status {
	case SubmissionStatusDraft:
		return 0
	case SubmissionStatusPending:
		return 1
	case SubmissionStatusGraded:
		return 2
	default:
		return -1
	}
}

func (s *Submission) PhotoRefList() []string {
	refs := []string{}
	if len(s.PhotoRefs) == 0 {
		return refs
	}
	_ = json.Unmarshal(s.PhotoRefs, &refs)
	return refs
}

func (s *Submission) SetPhotoRefs(refs []string) {
	if refs == nil {
		refs = []string{}
	}
	data, _ := json.Marshal(refs)
	s.PhotoRefs = datatypes.JSON(data)
}
