package services

import (
	"sort"
	"strings"

	"questhunt/apperr"
	"questhunt/models"
)

// AnswerTextSeparator joins the individual answer texts of one team rollup,
// in submission-creation order.
const AnswerTextSeparator = "\n---\n"

// AggregatedAnswer is the team-level rollup for one question. It is derived
// on every call and never stored.
//
// Score is the sum over all graded submissions in the group. Multiple players
// on one team may each be graded for the same question, and each grade counts;
// switching to max-of or first-graded semantics is a product decision, not a
// bug fix.
//
// Video surfaces the first video seen in group order as the representative
// one; AllVideos keeps the rest so nothing is silently dropped.
type AggregatedAnswer struct {
	TeamID     uint     `json:"team_id"`
	QuestionID uint     `json:"question_id"`
	Text       string   `json:"text"`
	Photos     []string `json:"photos"`
	Video      *string  `json:"video"`
	AllVideos  []string `json:"all_videos"`
	Status     string   `json:"status"`
	Score      int      `json:"score"`
}

// AggregationService collapses individual player submissions into one rollup
// per (team, question). Read-only; safe for any number of concurrent callers.
type AggregationService struct {
	submissions SubmissionStore
	players     PlayerStore
}

func NewAggregationService(submissions SubmissionStore, players PlayerStore) *AggregationService {
	return &AggregationService{
		submissions: submissions,
		players:     players,
	}
}

// Aggregate returns one AggregatedAnswer per (team, question) pair that has
// at least one submission from a teamed player. A game with no submissions
// yields an empty list.
func (s *AggregationService) Aggregate(gameID uint) ([]AggregatedAnswer, error) {
	if gameID == 0 {
		return nil, apperr.InvalidArgument("game id is required")
	}

	subs, err := s.submissions.ListByGame(gameID)
	if err != nil {
		return nil, err
	}

	players, err := s.players.ListByGame(gameID)
	if err != nil {
		return nil, err
	}
	teamOf := make(map[uint]uint, len(players))
	for _, p := range players {
		teamOf[p.ID] = p.TeamID
	}

	type groupKey struct {
		teamID     uint
		questionID uint
	}
	groups := make(map[groupKey][]models.Submission)
	for _, sub := range subs {
		teamID, ok := teamOf[sub.PlayerID]
		if !ok || teamID == 0 {
			// Orphan submission: the player has no team in this game
			continue
		}
		key := groupKey{teamID: teamID, questionID: sub.QuestionID}
		groups[key] = append(groups[key], sub)
	}

	answers := make([]AggregatedAnswer, 0, len(groups))
	for key, group := range groups {
		answers = append(answers, rollup(key.teamID, key.questionID, group))
	}

	sort.Slice(answers, func(i, j int) bool {
		if answers[i].TeamID != answers[j].TeamID {
			return answers[i].TeamID < answers[j].TeamID
		}
		return answers[i].QuestionID < answers[j].QuestionID
	})
	return answers, nil
}

// IsQuestionAnsweredByTeam reports whether the team has at least one
// submission past draft for the question. Draft-only groups do not count.
func (s *AggregationService) IsQuestionAnsweredByTeam(teamID, questionID uint) (bool, error) {
	if teamID == 0 || questionID == 0 {
		return false, apperr.InvalidArgument("team id and question id are required")
	}

	subs, err := s.submissions.ListByQuestion(questionID)
	if err != nil {
		return false, err
	}

	for _, sub := range subs {
		if sub.Status == models.SubmissionStatusDraft {
			continue
		}
		player, err := s.players.GetPlayer(sub.PlayerID)
		if err != nil {
			if apperr.Is(err, apperr.CodeNotFound) {
				continue // orphan submission
			}
			return false, err
		}
		if player.TeamID == teamID {
			return true, nil
		}
	}
	return false, nil
}

// rollup merges one (team, question) group. Callers pass the group in
// submission-creation order; the merge itself is order-independent beyond
// that because every step scans the group once.
func rollup(teamID, questionID uint, group []models.Submission) AggregatedAnswer {
	sort.SliceStable(group, func(i, j int) bool {
		if !group[i].CreatedAt.Equal(group[j].CreatedAt) {
			return group[i].CreatedAt.Before(group[j].CreatedAt)
		}
		return group[i].ID < group[j].ID
	})

	answer := AggregatedAnswer{
		TeamID:     teamID,
		QuestionID: questionID,
		Photos:     []string{},
		AllVideos:  []string{},
		Status:     models.SubmissionStatusDraft,
	}

	var texts []string
	seenPhotos := make(map[string]bool)
	for _, sub := range group {
		if sub.AnswerText != nil {
			texts = append(texts, *sub.AnswerText)
		}
		for _, ref := range sub.PhotoRefList() {
			if !seenPhotos[ref] {
				seenPhotos[ref] = true
				answer.Photos = append(answer.Photos, ref)
			}
		}
		if sub.VideoRef != nil {
			answer.AllVideos = append(answer.AllVideos, *sub.VideoRef)
			if answer.Video == nil {
				video := *sub.VideoRef
				answer.Video = &video
			}
		}
		if models.StatusRank(sub.Status) > models.StatusRank(answer.Status) {
			answer.Status = sub.Status
		}
		if sub.Status == models.SubmissionStatusGraded && sub.Score != nil {
			answer.Score += *sub.Score
		}
	}
	answer.Text = strings.Join(texts, AnswerTextSeparator)

	return answer
}
