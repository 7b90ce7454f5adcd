package services

import (
	"sort"

	"questhunt/apperr"
	"questhunt/models"
)

// ProgressionService gates each player's access to sequential categories.
// Non-sequential categories are always open; of the sequential ones a player
// sees exactly the first (by order, id) they have not completed yet.
type ProgressionService struct {
	players PlayerStore
	catalog CatalogStore
	agg     *AggregationService
}

func NewProgressionService(players PlayerStore, catalog CatalogStore, agg *AggregationService) *ProgressionService {
	return &ProgressionService{
		players: players,
		catalog: catalog,
		agg:     agg,
	}
}

func (s *ProgressionService) GetProgress(playerID uint) (*models.PlayerProgress, error) {
	if playerID == 0 {
		return nil, apperr.InvalidArgument("player id is required")
	}
	player, err := s.players.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}
	progress := player.Progress()
	return &progress, nil
}

// DisplayableCategories returns the categories currently exposed to the
// player: every non-sequential category of the game plus at most one
// sequential category, the first incomplete one in (order, id) order.
func (s *ProgressionService) DisplayableCategories(playerID uint) ([]models.Category, error) {
	if playerID == 0 {
		return nil, apperr.InvalidArgument("player id is required")
	}
	player, err := s.players.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	categories, err := s.catalog.ListCategories(player.GameID)
	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool)
	for _, id := range player.CompletedCategoryIDs() {
		completed[id] = true
	}

	displayable := []models.Category{}
	for _, c := range categories {
		if !c.IsSequential {
			displayable = append(displayable, c)
		}
	}
	for _, c := range sequentialInOrder(categories) {
		if !completed[c.ID] {
			displayable = append(displayable, c)
			break
		}
	}
	return displayable, nil
}

// CompleteCategory records the category as completed for the player and
// advances the sequential chain. The team must have answered every question
// in the category first; the check runs here, server-side, so a client
// cannot skip the gate. Completing an already completed category is a no-op
// that returns the unchanged state.
//
// The read-validate-write is guarded by the player's progress version; a
// concurrent update to the same player surfaces as ConcurrencyConflict and
// the caller retries.
func (s *ProgressionService) CompleteCategory(playerID, categoryID uint) (*models.PlayerProgress, error) {
	if playerID == 0 || categoryID == 0 {
		return nil, apperr.InvalidArgument("player id and category id are required")
	}

	player, err := s.players.GetPlayer(playerID)
	if err != nil {
		return nil, err
	}

	category, err := s.catalog.GetCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if category.GameID != player.GameID {
		return nil, apperr.NotFound("category %d not found in game %d", categoryID, player.GameID)
	}

	questions, err := s.catalog.ListQuestionsByCategory(categoryID)
	if err != nil {
		return nil, err
	}
	for _, q := range questions {
		answered, err := s.agg.IsQuestionAnsweredByTeam(player.TeamID, q.ID)
		if err != nil {
			return nil, err
		}
		if !answered {
			return nil, apperr.PreconditionFailed("question %d is not answered by team %d", q.ID, player.TeamID)
		}
	}

	version := player.ProgressVersion

	completedCategories := player.CompletedCategoryIDs()
	if !containsID(completedCategories, categoryID) {
		completedCategories = append(completedCategories, categoryID)
	}
	player.SetCompletedCategories(completedCategories)

	completedQuestions := player.CompletedQuestionIDs()
	for _, q := range questions {
		if !containsID(completedQuestions, q.ID) {
			completedQuestions = append(completedQuestions, q.ID)
		}
	}
	player.SetCompletedQuestions(completedQuestions)

	if err := s.advanceCurrentCategory(player, category); err != nil {
		return nil, err
	}

	if err := s.players.UpdateProgress(player, version); err != nil {
		return nil, err
	}

	progress := player.Progress()
	return &progress, nil
}

// advanceCurrentCategory recomputes the player's current sequential category
// after completing the given one. Only completing the current sequential
// category advances the chain; a stale current pointer equal to the completed
// category is cleared.
func (s *ProgressionService) advanceCurrentCategory(player *models.Player, completed *models.Category) error {
	current := player.CurrentCategoryID
	if current == nil || *current != completed.ID {
		return nil
	}
	if !completed.IsSequential {
		player.CurrentCategoryID = nil
		return nil
	}

	categories, err := s.catalog.ListCategories(player.GameID)
	if err != nil {
		return err
	}

	seq := sequentialInOrder(categories)
	player.CurrentCategoryID = nil
	for i, c := range seq {
		if c.ID == completed.ID {
			if i+1 < len(seq) {
				next := seq[i+1].ID
				player.CurrentCategoryID = &next
			}
			break
		}
	}
	return nil
}

// sequentialInOrder filters to sequential categories sorted ascending by
// (order, id); the id tiebreak keeps advancement deterministic.
func sequentialInOrder(categories []models.Category) []models.Category {
	seq := []models.Category{}
	for _, c := range categories {
		if c.IsSequential {
			seq = append(seq, c)
		}
	}
	sort.SliceStable(seq, func(i, j int) bool {
		if seq[i].Order != seq[j].Order {
			return seq[i].Order < seq[j].Order
		}
		return seq[i].ID < seq[j].ID
	})
	return seq
}

func containsID(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
