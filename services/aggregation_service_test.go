package services

import (
	"testing"
	"time"

	"questhunt/apperr"
	"questhunt/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func submissionAt(id, playerID, questionID uint, status string, minute int) models.Submission {
	return models.Submission{
		ID:         id,
		PlayerID:   playerID,
		QuestionID: questionID,
		Type:       models.SubmissionTypeText,
		Status:     status,
		CreatedAt:  time.Date(2025, 6, 1, 12, minute, 0, 0, time.UTC),
	}
}

func TestAggregateMergesGroup(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	players.add(&models.Player{ID: 1, GameID: 1, TeamID: 5})
	players.add(&models.Player{ID: 2, GameID: 1, TeamID: 5})

	first := submissionAt(10, 1, 100, models.SubmissionStatusGraded, 0)
	first.AnswerText = strPtr("found it at the fountain")
	first.SetPhotoRefs([]string{"p1.jpg", "p2.jpg"})
	first.Score = intPtr(3)

	second := submissionAt(11, 2, 100, models.SubmissionStatusPending, 1)
	second.AnswerText = strPtr("confirmed, north side")
	second.SetPhotoRefs([]string{"p2.jpg", "p3.jpg"})
	second.VideoRef = strPtr("v1.mp4")

	third := submissionAt(12, 1, 100, models.SubmissionStatusGraded, 2)
	third.VideoRef = strPtr("v2.mp4")
	third.Score = intPtr(5)

	subs.add(first, 1)
	subs.add(second, 1)
	subs.add(third, 1)

	svc := NewAggregationService(subs, players)
	answers, err := svc.Aggregate(1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(answers) != 1 {
		t.Fatalf("expected one rollup, got %d", len(answers))
	}

	got := answers[0]
	if got.TeamID != 5 || got.QuestionID != 100 {
		t.Fatalf("wrong group key: %+v", got)
	}
	wantText := "found it at the fountain" + AnswerTextSeparator + "confirmed, north side"
	if got.Text != wantText {
		t.Errorf("text = %q, want %q", got.Text, wantText)
	}
	if len(got.Photos) != 3 || got.Photos[0] != "p1.jpg" || got.Photos[1] != "p2.jpg" || got.Photos[2] != "p3.jpg" {
		t.Errorf("photos = %v, want deduped first-seen order", got.Photos)
	}
	if got.Video == nil || *got.Video != "v1.mp4" {
		t.Errorf("representative video = %v, want v1.mp4", got.Video)
	}
	if len(got.AllVideos) != 2 || got.AllVideos[1] != "v2.mp4" {
		t.Errorf("all videos = %v, want both kept", got.AllVideos)
	}
	if got.Status != models.SubmissionStatusGraded {
		t.Errorf("status = %s, want graded", got.Status)
	}
	if got.Score != 8 {
		t.Errorf("score = %d, want sum of graded scores 8", got.Score)
	}
}

func TestAggregateStatusPendingWithoutGrades(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	players.add(&models.Player{ID: 1, GameID: 1, TeamID: 5})

	subs.add(submissionAt(1, 1, 100, models.SubmissionStatusDraft, 0), 1)
	subs.add(submissionAt(2, 1, 100, models.SubmissionStatusPending, 1), 1)

	svc := NewAggregationService(subs, players)
	answers, err := svc.Aggregate(1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(answers) != 1 || answers[0].Status != models.SubmissionStatusPending {
		t.Fatalf("expected one pending rollup, got %+v", answers)
	}
	if answers[0].Score != 0 {
		t.Errorf("score = %d, ungraded groups score 0", answers[0].Score)
	}
}

func TestAggregateSkipsOrphanSubmissions(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	// Player 9 is not in the roster at all
	subs.add(submissionAt(1, 9, 100, models.SubmissionStatusPending, 0), 1)

	svc := NewAggregationService(subs, players)
	answers, err := svc.Aggregate(1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(answers) != 0 {
		t.Fatalf("orphan submission produced a rollup: %+v", answers)
	}
}

func TestAggregateEmptyGame(t *testing.T) {
	svc := NewAggregationService(newFakeSubmissionStore(), newFakePlayerStore())
	answers, err := svc.Aggregate(42)
	if err != nil {
		t.Fatalf("empty game must not error: %v", err)
	}
	if len(answers) != 0 {
		t.Fatalf("expected empty list, got %+v", answers)
	}
}

func TestAggregateRequiresGameID(t *testing.T) {
	svc := NewAggregationService(newFakeSubmissionStore(), newFakePlayerStore())
	if _, err := svc.Aggregate(0); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestAggregateDeterministicOrder(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	players.add(&models.Player{ID: 1, GameID: 1, TeamID: 7})
	players.add(&models.Player{ID: 2, GameID: 1, TeamID: 5})

	subs.add(submissionAt(1, 1, 200, models.SubmissionStatusPending, 0), 1)
	subs.add(submissionAt(2, 2, 100, models.SubmissionStatusPending, 1), 1)
	subs.add(submissionAt(3, 2, 200, models.SubmissionStatusPending, 2), 1)

	svc := NewAggregationService(subs, players)
	answers, err := svc.Aggregate(1)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(answers) != 3 {
		t.Fatalf("expected 3 rollups, got %d", len(answers))
	}
	for i := 1; i < len(answers); i++ {
		a, b := answers[i-1], answers[i]
		if a.TeamID > b.TeamID || (a.TeamID == b.TeamID && a.QuestionID > b.QuestionID) {
			t.Fatalf("rollups out of (team, question) order: %+v", answers)
		}
	}
}

func TestIsQuestionAnsweredByTeam(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	players.add(&models.Player{ID: 1, GameID: 1, TeamID: 5})
	players.add(&models.Player{ID: 2, GameID: 1, TeamID: 6})

	subs.add(submissionAt(1, 1, 100, models.SubmissionStatusDraft, 0), 1)
	subs.add(submissionAt(2, 2, 100, models.SubmissionStatusGraded, 1), 1)

	svc := NewAggregationService(subs, players)

	// Team 5 only has a draft: not answered
	answered, err := svc.IsQuestionAnsweredByTeam(5, 100)
	if err != nil {
		t.Fatalf("IsQuestionAnsweredByTeam: %v", err)
	}
	if answered {
		t.Error("draft-only group counted as answered")
	}

	// Team 6 has a graded submission
	answered, err = svc.IsQuestionAnsweredByTeam(6, 100)
	if err != nil {
		t.Fatalf("IsQuestionAnsweredByTeam: %v", err)
	}
	if !answered {
		t.Error("graded submission not counted as answered")
	}

	// Nobody answered question 999
	answered, err = svc.IsQuestionAnsweredByTeam(5, 999)
	if err != nil {
		t.Fatalf("IsQuestionAnsweredByTeam: %v", err)
	}
	if answered {
		t.Error("empty group counted as answered")
	}

	if _, err := svc.IsQuestionAnsweredByTeam(0, 100); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Errorf("expected InvalidArgument for zero team id, got %v", err)
	}
}

func TestIsQuestionAnsweredByTeamTurnsTrueOnSubmit(t *testing.T) {
	subs := newFakeSubmissionStore()
	players := newFakePlayerStore()
	players.add(&models.Player{ID: 1, GameID: 1, TeamID: 5})

	draft := submissionAt(1, 1, 100, models.SubmissionStatusDraft, 0)
	subs.add(draft, 1)

	svc := NewAggregationService(subs, players)
	if answered, _ := svc.IsQuestionAnsweredByTeam(5, 100); answered {
		t.Fatal("draft counted as answered")
	}

	subs.subs[0].Status = models.SubmissionStatusPending
	if answered, _ := svc.IsQuestionAnsweredByTeam(5, 100); !answered {
		t.Fatal("pending submission not counted as answered")
	}
}
