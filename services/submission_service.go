package services

import (
	"errors"

	"questhunt/apperr"
	"questhunt/models"

	"gorm.io/gorm"
)

// SubmissionService is the write side of the submission store. Status only
// ever moves draft -> pending -> graded; every transition is checked here so
// a row can never regress.
type SubmissionService struct {
	db *gorm.DB
}

func NewSubmissionService(db *gorm.DB) *SubmissionService {
	return &SubmissionService{db: db}
}

type CreateSubmissionRequest struct {
	QuestionID uint     `json:"question_id" binding:"required"`
	Type       string   `json:"type" binding:"required,oneof=text photo video"`
	AnswerText *string  `json:"answer_text"`
	PhotoRefs  []string `json:"photo_refs"`
	VideoRef   *string  `json:"video_ref"`
}

type AmendSubmissionRequest struct {
	AnswerText *string  `json:"answer_text"`
	PhotoRefs  []string `json:"photo_refs"`
	VideoRef   *string  `json:"video_ref"`
}

// Create stores a new draft submission for the player.
func (s *SubmissionService) Create(playerID uint, req *CreateSubmissionRequest) (*models.Submission, error) {
	if playerID == 0 {
		return nil, apperr.InvalidArgument("player id is required")
	}
	switch req.Type {
	case models.SubmissionTypeText, models.SubmissionTypePhoto, models.SubmissionTypeVideo:
	default:
		// unreachable through binding validation; kept for direct callers
		return nil, apperr.InvalidArgument("unknown submission type %q", req.Type)
	}

	var player models.Player
	if err := s.db.First(&player, playerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("player %d not found", playerID)
		}
		return nil, apperr.Unavailable(err, "get player %d", playerID)
	}

	var question models.Question
	if err := s.db.Where("id = ? AND game_id = ?", req.QuestionID, player.GameID).
		First(&question).Error; err != nil {
		return nil, apperr.NotFound("question %d not found in game %d", req.QuestionID, player.GameID)
	}

	sub := models.Submission{
		PlayerID:   playerID,
		QuestionID: req.QuestionID,
		Type:       req.Type,
		AnswerText: req.AnswerText,
		VideoRef:   req.VideoRef,
		Status:     models.SubmissionStatusDraft,
	}
	sub.SetPhotoRefs(req.PhotoRefs)

	if err := s.db.Create(&sub).Error; err != nil {
		return nil, apperr.Unavailable(err, "create submission")
	}
	return &sub, nil
}

// Amend replaces the evidence on a draft. Anything past draft is frozen.
func (s *SubmissionService) Amend(submissionID, playerID uint, req *AmendSubmissionRequest) (*models.Submission, error) {
	sub, err := s.getOwned(submissionID, playerID)
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubmissionStatusDraft {
		return nil, apperr.PreconditionFailed("submission %d is already %s", submissionID, sub.Status)
	}

	sub.AnswerText = req.AnswerText
	sub.VideoRef = req.VideoRef
	sub.SetPhotoRefs(req.PhotoRefs)

	if err := s.db.Save(sub).Error; err != nil {
		return nil, apperr.Unavailable(err, "update submission %d", submissionID)
	}
	return sub, nil
}

// Submit moves a draft to pending, making it count as a team answer.
func (s *SubmissionService) Submit(submissionID, playerID uint) (*models.Submission, error) {
	sub, err := s.getOwned(submissionID, playerID)
	if err != nil {
		return nil, err
	}
	return s.transition(sub, models.SubmissionStatusDraft, models.SubmissionStatusPending, nil)
}

// Grade moves a pending submission to graded with the given score.
// The organizer owning the game is the only legal caller; the handler
// checks that predicate before calling in.
func (s *SubmissionService) Grade(submissionID uint, score int) (*models.Submission, error) {
	if score < 0 {
		return nil, apperr.InvalidArgument("score must be non-negative")
	}

	sub, err := s.Get(submissionID)
	if err != nil {
		return nil, err
	}
	return s.transition(sub, models.SubmissionStatusPending, models.SubmissionStatusGraded, &score)
}

func (s *SubmissionService) Get(submissionID uint) (*models.Submission, error) {
	var sub models.Submission
	if err := s.db.First(&sub, submissionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("submission %d not found", submissionID)
		}
		return nil, apperr.Unavailable(err, "get submission %d", submissionID)
	}
	return &sub, nil
}

// GameForSubmission resolves the game a submission belongs to, for the
// ownership predicate on grading.
func (s *SubmissionService) GameForSubmission(submissionID uint) (uint, error) {
	sub, err := s.Get(submissionID)
	if err != nil {
		return 0, err
	}
	var question models.Question
	if err := s.db.First(&question, sub.QuestionID).Error; err != nil {
		return 0, apperr.Unavailable(err, "get question %d", sub.QuestionID)
	}
	return question.GameID, nil
}

func (s *SubmissionService) ListForPlayer(playerID uint) ([]models.Submission, error) {
	var subs []models.Submission
	err := s.db.Where("player_id = ?", playerID).
		Order("created_at, id").
		Find(&subs).Error
	if err != nil {
		return nil, apperr.Unavailable(err, "list submissions for player %d", playerID)
	}
	return subs, nil
}

func (s *SubmissionService) getOwned(submissionID, playerID uint) (*models.Submission, error) {
	sub, err := s.Get(submissionID)
	if err != nil {
		return nil, err
	}
	if sub.PlayerID != playerID {
		return nil, apperr.NotFound("submission %d not found", submissionID)
	}
	return sub, nil
}

// transition applies a single forward status move. The guarded update keeps
// two concurrent transitions of the same row from both applying.
func (s *SubmissionService) transition(sub *models.Submission, from, to string, score *int) (*models.Submission, error) {
	if sub.Status == to {
		return nil, apperr.PreconditionFailed("submission %d is already %s", sub.ID, to)
	}
	if sub.Status != from {
		return nil, apperr.PreconditionFailed("submission %d is %s, expected %s", sub.ID, sub.Status, from)
	}
	if models.StatusRank(to) < models.StatusRank(from) {
		return nil, apperr.InvalidArgument("submission status cannot regress from %s to %s", from, to)
	}

	updates := map[string]interface{}{"status": to}
	if score != nil {
		updates["score"] = *score
	}
	res := s.db.Model(&models.Submission{}).
		Where("id = ? AND status = ?", sub.ID, from).
		Updates(updates)
	if res.Error != nil {
		return nil, apperr.Unavailable(res.Error, "update submission %d", sub.ID)
	}
	if res.RowsAffected == 0 {
		return nil, apperr.ConcurrencyConflict("submission %d changed concurrently", sub.ID)
	}

	sub.Status = to
	sub.Score = score
	return sub, nil
}
