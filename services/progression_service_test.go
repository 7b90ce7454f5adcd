package services

import (
	"reflect"
	"testing"

	"questhunt/apperr"
	"questhunt/models"
)

// buildHunt sets up the spec scenario: game 1 with sequential categories
// A (order 1, Q1 Q2) and B (order 2, Q3), non-sequential N (Q4), and one
// player on team 5 currently pointed at A.
func buildHunt(t *testing.T) (*ProgressionService, *fakeSubmissionStore, *fakePlayerStore) {
	t.Helper()

	catalog := newFakeCatalogStore()
	catalog.categories = []models.Category{
		{ID: 1, GameID: 1, Name: "A", IsSequential: true, Order: 1},
		{ID: 2, GameID: 1, Name: "B", IsSequential: true, Order: 2},
		{ID: 3, GameID: 1, Name: "N", IsSequential: false},
	}
	catalog.questions[1] = []models.Question{
		{ID: 101, GameID: 1, Title: "Q1"},
		{ID: 102, GameID: 1, Title: "Q2"},
	}
	catalog.questions[2] = []models.Question{{ID: 103, GameID: 1, Title: "Q3"}}
	catalog.questions[3] = []models.Question{{ID: 104, GameID: 1, Title: "Q4"}}

	players := newFakePlayerStore()
	current := uint(1)
	player := &models.Player{ID: 1, GameID: 1, TeamID: 5, CurrentCategoryID: &current}
	player.SetCompletedCategories(nil)
	player.SetCompletedQuestions(nil)
	players.add(player)

	subs := newFakeSubmissionStore()
	agg := NewAggregationService(subs, players)
	return NewProgressionService(players, catalog, agg), subs, players
}

func answerQuestion(subs *fakeSubmissionStore, id, questionID uint) {
	subs.add(models.Submission{
		ID:         id,
		PlayerID:   1,
		QuestionID: questionID,
		Type:       models.SubmissionTypeText,
		Status:     models.SubmissionStatusPending,
	}, 1)
}

func TestCompleteCategoryAdvancesToNext(t *testing.T) {
	svc, subs, _ := buildHunt(t)
	answerQuestion(subs, 1, 101)
	answerQuestion(subs, 2, 102)

	progress, err := svc.CompleteCategory(1, 1)
	if err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}
	if progress.CurrentCategoryID == nil || *progress.CurrentCategoryID != 2 {
		t.Errorf("current = %v, want B (2)", progress.CurrentCategoryID)
	}
	if !reflect.DeepEqual(progress.CompletedCategories, []uint{1}) {
		t.Errorf("completed categories = %v, want [1]", progress.CompletedCategories)
	}
	if !reflect.DeepEqual(progress.CompletedQuestions, []uint{101, 102}) {
		t.Errorf("completed questions = %v, want [101 102]", progress.CompletedQuestions)
	}
}

func TestCompleteCategoryRejectsUnanswered(t *testing.T) {
	svc, subs, _ := buildHunt(t)
	// Q1 answered, Q2 still draft
	answerQuestion(subs, 1, 101)
	subs.add(models.Submission{
		ID: 2, PlayerID: 1, QuestionID: 102,
		Type: models.SubmissionTypeText, Status: models.SubmissionStatusDraft,
	}, 1)

	_, err := svc.CompleteCategory(1, 1)
	if !apperr.Is(err, apperr.CodePreconditionFailed) {
		t.Fatalf("expected PreconditionFailed, got %v", err)
	}

	progress, err := svc.GetProgress(1)
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if len(progress.CompletedCategories) != 0 {
		t.Errorf("rejected completion still recorded: %v", progress.CompletedCategories)
	}
}

func TestCompleteCategoryIdempotent(t *testing.T) {
	svc, subs, _ := buildHunt(t)
	answerQuestion(subs, 1, 101)
	answerQuestion(subs, 2, 102)

	first, err := svc.CompleteCategory(1, 1)
	if err != nil {
		t.Fatalf("first CompleteCategory: %v", err)
	}
	second, err := svc.CompleteCategory(1, 1)
	if err != nil {
		t.Fatalf("second CompleteCategory: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second completion changed state: %+v vs %+v", first, second)
	}
}

func TestCompleteLastSequentialClearsCurrent(t *testing.T) {
	svc, subs, players := buildHunt(t)
	answerQuestion(subs, 1, 103)

	// Player has already worked through A and sits on B, the last one
	stored := players.players[1]
	stored.SetCompletedCategories([]uint{1})
	current := uint(2)
	stored.CurrentCategoryID = &current

	progress, err := svc.CompleteCategory(1, 2)
	if err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}
	if progress.CurrentCategoryID != nil {
		t.Errorf("current = %v, want nil after the last sequential category", *progress.CurrentCategoryID)
	}
}

func TestCompleteNonSequentialLeavesCurrent(t *testing.T) {
	svc, subs, _ := buildHunt(t)
	answerQuestion(subs, 1, 104)

	progress, err := svc.CompleteCategory(1, 3)
	if err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}
	if progress.CurrentCategoryID == nil || *progress.CurrentCategoryID != 1 {
		t.Errorf("current = %v, non-sequential completion must not move it", progress.CurrentCategoryID)
	}
	if !reflect.DeepEqual(progress.CompletedCategories, []uint{3}) {
		t.Errorf("completed = %v, want [3]", progress.CompletedCategories)
	}
}

func TestCompleteStaleNonSequentialCurrentClears(t *testing.T) {
	svc, subs, players := buildHunt(t)
	answerQuestion(subs, 1, 104)

	// Stale state: current points at the non-sequential category
	stored := players.players[1]
	current := uint(3)
	stored.CurrentCategoryID = &current

	progress, err := svc.CompleteCategory(1, 3)
	if err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}
	if progress.CurrentCategoryID != nil {
		t.Errorf("current = %v, stale pointer should clear", *progress.CurrentCategoryID)
	}
}

func TestCompleteCategoryNotFound(t *testing.T) {
	svc, _, _ := buildHunt(t)

	if _, err := svc.CompleteCategory(99, 1); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("unknown player: expected NotFound, got %v", err)
	}
	if _, err := svc.CompleteCategory(1, 99); !apperr.Is(err, apperr.CodeNotFound) {
		t.Errorf("unknown category: expected NotFound, got %v", err)
	}
	if _, err := svc.CompleteCategory(0, 1); !apperr.Is(err, apperr.CodeInvalidArgument) {
		t.Errorf("zero player id: expected InvalidArgument, got %v", err)
	}
}

func TestCompleteCategoryConcurrencyConflict(t *testing.T) {
	svc, subs, players := buildHunt(t)
	answerQuestion(subs, 1, 101)
	answerQuestion(subs, 2, 102)

	// Another writer sneaks in between read and write
	players.beforeUpdate = func() {
		players.players[1].ProgressVersion++
		players.beforeUpdate = nil
	}

	_, err := svc.CompleteCategory(1, 1)
	if !apperr.Is(err, apperr.CodeConcurrencyConflict) {
		t.Fatalf("expected ConcurrencyConflict, got %v", err)
	}

	// The retry the caller is told to do succeeds
	if _, err := svc.CompleteCategory(1, 1); err != nil {
		t.Fatalf("retry after conflict: %v", err)
	}
}

func TestDisplayableCategories(t *testing.T) {
	svc, subs, _ := buildHunt(t)

	names := func(cats []models.Category) []string {
		out := []string{}
		for _, c := range cats {
			out = append(out, c.Name)
		}
		return out
	}

	cats, err := svc.DisplayableCategories(1)
	if err != nil {
		t.Fatalf("DisplayableCategories: %v", err)
	}
	if !reflect.DeepEqual(names(cats), []string{"N", "A"}) {
		t.Fatalf("displayable = %v, want non-sequential plus first incomplete sequential", names(cats))
	}

	// Complete A: B becomes the one sequential category shown
	answerQuestion(subs, 1, 101)
	answerQuestion(subs, 2, 102)
	if _, err := svc.CompleteCategory(1, 1); err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}

	cats, err = svc.DisplayableCategories(1)
	if err != nil {
		t.Fatalf("DisplayableCategories: %v", err)
	}
	if !reflect.DeepEqual(names(cats), []string{"N", "B"}) {
		t.Fatalf("displayable = %v, want [N B]", names(cats))
	}

	// Complete B too: only non-sequential categories remain
	answerQuestion(subs, 3, 103)
	if _, err := svc.CompleteCategory(1, 2); err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}

	cats, err = svc.DisplayableCategories(1)
	if err != nil {
		t.Fatalf("DisplayableCategories: %v", err)
	}
	if !reflect.DeepEqual(names(cats), []string{"N"}) {
		t.Fatalf("displayable = %v, want [N]", names(cats))
	}
}

// The end-to-end scenario: team answers Q1 and Q2, completes A, advances to
// B, and a repeat completion is a no-op.
func TestScenarioCompleteFirstCategory(t *testing.T) {
	svc, subs, _ := buildHunt(t)
	agg := svc.agg

	answerQuestion(subs, 1, 101)
	answerQuestion(subs, 2, 102)

	if answered, _ := agg.IsQuestionAnsweredByTeam(5, 101); !answered {
		t.Fatal("Q1 should be answered")
	}
	if answered, _ := agg.IsQuestionAnsweredByTeam(5, 103); answered {
		t.Fatal("Q3 should not be answered")
	}

	progress, err := svc.CompleteCategory(1, 1)
	if err != nil {
		t.Fatalf("CompleteCategory: %v", err)
	}
	if progress.CurrentCategoryID == nil || *progress.CurrentCategoryID != 2 {
		t.Fatalf("current = %v, want B", progress.CurrentCategoryID)
	}

	again, err := svc.CompleteCategory(1, 1)
	if err != nil {
		t.Fatalf("repeat CompleteCategory: %v", err)
	}
	if !reflect.DeepEqual(progress, again) {
		t.Fatalf("repeat completion changed state: %+v vs %+v", progress, again)
	}
}
