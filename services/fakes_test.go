package services

import (
	"questhunt/apperr"
	"questhunt/models"
)

// In-memory stores backing the engine tests.

type fakeSubmissionStore struct {
	subs []models.Submission
	// question id -> game id, since submissions reach a game through
	// their question
	questionGame map[uint]uint
}

func newFakeSubmissionStore() *fakeSubmissionStore {
	return &fakeSubmissionStore{questionGame: make(map[uint]uint)}
}

func (f *fakeSubmissionStore) add(sub models.Submission, gameID uint) {
	f.subs = append(f.subs, sub)
	f.questionGame[sub.QuestionID] = gameID
}

func (f *fakeSubmissionStore) ListByGame(gameID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range f.subs {
		if f.questionGame[s.QuestionID] == gameID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSubmissionStore) ListByQuestion(questionID uint) ([]models.Submission, error) {
	var out []models.Submission
	for _, s := range f.subs {
		if s.QuestionID == questionID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeCatalogStore struct {
	categories []models.Category
	questions  map[uint][]models.Question // by category id
}

func newFakeCatalogStore() *fakeCatalogStore {
	return &fakeCatalogStore{questions: make(map[uint][]models.Question)}
}

func (f *fakeCatalogStore) GetCategory(categoryID uint) (*models.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == categoryID {
			c := f.categories[i]
			return &c, nil
		}
	}
	return nil, apperr.NotFound("category %d not found", categoryID)
}

func (f *fakeCatalogStore) ListCategories(gameID uint) ([]models.Category, error) {
	var out []models.Category
	for _, c := range f.categories {
		if c.GameID == gameID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCatalogStore) ListQuestionsByCategory(categoryID uint) ([]models.Question, error) {
	return f.questions[categoryID], nil
}

type fakePlayerStore struct {
	players map[uint]*models.Player
	// runs before the version check in UpdateProgress; tests use it to
	// simulate a concurrent writer
	beforeUpdate func()
}

func newFakePlayerStore() *fakePlayerStore {
	return &fakePlayerStore{players: make(map[uint]*models.Player)}
}

func (f *fakePlayerStore) add(p *models.Player) {
	f.players[p.ID] = p
}

func (f *fakePlayerStore) GetPlayer(playerID uint) (*models.Player, error) {
	p, ok := f.players[playerID]
	if !ok {
		return nil, apperr.NotFound("player %d not found", playerID)
	}
	copy := *p
	return &copy, nil
}

func (f *fakePlayerStore) ListByGame(gameID uint) ([]models.Player, error) {
	var out []models.Player
	for _, p := range f.players {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePlayerStore) UpdateProgress(player *models.Player, expectedVersion int) error {
	if f.beforeUpdate != nil {
		f.beforeUpdate()
	}
	stored, ok := f.players[player.ID]
	if !ok {
		return apperr.NotFound("player %d not found", player.ID)
	}
	if stored.ProgressVersion != expectedVersion {
		return apperr.ConcurrencyConflict("player %d progress changed concurrently", player.ID)
	}
	stored.CompletedCategories = player.CompletedCategories
	stored.CompletedQuestions = player.CompletedQuestions
	stored.CurrentCategoryID = player.CurrentCategoryID
	stored.ProgressVersion = expectedVersion + 1
	player.ProgressVersion = stored.ProgressVersion
	return nil
}
