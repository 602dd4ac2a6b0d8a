package services

import (
	"context"
	"errors"
	"time"

	"github.com/questforge/gateway/app_config"
	"github.com/questforge/gateway/app_errors"
	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/repositories"
	"github.com/sethvargo/go-retry"
)

var errXpConflict = errors.New("concurrent xp update")

type ProfileService struct {
	store            repositories.ProfileStore
	maxAttempts      int
	leaderboardLimit int
}

func NewProfileService(ac *app_config.AppConfig, store repositories.ProfileStore) *ProfileService {
	maxAttempts := ac.XpUpdateMaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ProfileService{
		store:            store,
		maxAttempts:      maxAttempts,
		leaderboardLimit: ac.LeaderboardLimit,
	}
}

// CreateProfile inserts a fresh profile with xp fixed at zero. Repeat
// calls for the same user id return the existing row untouched.
func (s *ProfileService) CreateProfile(ctx context.Context, userId, name, role string) ([]*entities.Profile, error) {
	return s.store.Upsert(ctx, &entities.Profile{
		Id:   userId,
		Name: name,
		Role: role,
		Xp:   0,
	})
}

func (s *ProfileService) GetProfile(ctx context.Context, userId string) (*entities.Profile, error) {
	return s.store.Get(ctx, userId)
}

// AddXp applies the delta with a compare-and-set loop: read the current
// xp, write the sum conditioned on the read value, retry when a
// concurrent writer moved it first. Concurrent increments never lose an
// update this way; the store trigger then refreshes the ranks.
func (s *ProfileService) AddXp(ctx context.Context, userId string, delta int) (int, error) {
	var finalXp int
	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewConstant(2*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		currentXp, err := s.store.GetXp(ctx, userId)
		if err != nil {
			return err
		}
		applied, err := s.store.CompareAndSetXp(ctx, userId, currentXp, currentXp+delta)
		if err != nil {
			return err
		}
		if !applied {
			return retry.RetryableError(errXpConflict)
		}
		finalXp = currentXp + delta
		return nil
	})
	if err != nil {
		if errors.Is(err, errXpConflict) {
			return 0, app_errors.ConflictExhausted(
				"xp update for user %s lost the race %d times", userId, s.maxAttempts,
			)
		}
		return 0, err
	}
	return finalXp, nil
}

func (s *ProfileService) Leaderboard(ctx context.Context) ([]*entities.LeaderboardEntry, error) {
	entries, err := s.store.Leaderboard(ctx, s.leaderboardLimit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*entities.LeaderboardEntry{}
	}
	return entries, nil
}
