package services

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const presenceTTL = 2 * time.Hour

// PresenceService tracks which players are currently connected to a game's
// live session. Purely ephemeral: the set expires on its own, and a best
// effort is all the roster endpoint needs.
type PresenceService struct {
	redis *redis.Client
}

func NewPresenceService(client *redis.Client) *PresenceService {
	return &PresenceService{redis: client}
}

func presenceKey(gameID uint) string {
	return fmt.Sprintf("presence:game:%d", gameID)
}

// Touch marks the player online and refreshes the set's expiry.
func (s *PresenceService) Touch(gameID, playerID uint) {
	ctx := context.Background()
	key := presenceKey(gameID)
	if err := s.redis.SAdd(ctx, key, playerID).Err(); err != nil {
		log.Printf("presence: failed to add player %d to game %d: %v", playerID, gameID, err)
		return
	}
	s.redis.Expire(ctx, key, presenceTTL)
}

// Remove drops the player from the online set.
func (s *PresenceService) Remove(gameID, playerID uint) {
	ctx := context.Background()
	if err := s.redis.SRem(ctx, presenceKey(gameID), playerID).Err(); err != nil {
		log.Printf("presence: failed to remove player %d from game %d: %v", playerID, gameID, err)
	}
}

// Online returns the ids of players currently marked online for the game.
func (s *PresenceService) Online(gameID uint) []uint {
	members, err := s.redis.SMembers(context.Background(), presenceKey(gameID)).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("presence: failed to read roster for game %d: %v", gameID, err)
		}
		return nil
	}

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseUint(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids
}
