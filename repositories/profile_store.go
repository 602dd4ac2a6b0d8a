package repositories

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/questforge/gateway/app_errors"
	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/supabase"
)

// ProfileStore is the table API over the profiles table. The store owns
// the trigger that recomputes leaderboard_position whenever xp changes;
// this layer only reads the derived column.
type ProfileStore interface {
	// Upsert inserts the profile, or leaves an existing row in place
	// when one already exists for the same id.
	Upsert(ctx context.Context, profile *entities.Profile) ([]*entities.Profile, error)
	Get(ctx context.Context, userId string) (*entities.Profile, error)
	GetXp(ctx context.Context, userId string) (int, error)
	// CompareAndSetXp writes newXp only if the row still holds
	// currentXp. Returns false when a concurrent writer got in first.
	CompareAndSetXp(ctx context.Context, userId string, currentXp, newXp int) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error)
}

type profileStoreSupabase struct {
	c *supabase.ServiceClient
}

func NewProfileStore(c *supabase.ServiceClient) ProfileStore {
	return &profileStoreSupabase{c: c}
}

// singleRowHeaders makes the table API return one object instead of an
// array, failing with 406 when zero or multiple rows match.
var singleRowHeaders = map[string]string{
	"Accept": "application/vnd.pgrst.object+json",
}

func notFound(err error, userId string) error {
	var statusErr *supabase.StatusError
	if errors.As(err, &statusErr) && statusErr.Status == http.StatusNotAcceptable {
		return app_errors.NotFound("no profile for user %s", userId)
	}
	return err
}

func (p *profileStoreSupabase) Upsert(ctx context.Context, profile *entities.Profile) ([]*entities.Profile, error) {
	headers := map[string]string{
		"Prefer": "return=representation,resolution=ignore-duplicates",
	}
	row := map[string]any{
		"id":   profile.Id,
		"name": profile.Name,
		"role": profile.Role,
		"xp":   profile.Xp,
	}
	var rows []*entities.Profile
	err := p.c.DoJSON(ctx, "POST", "/rest/v1/profiles?on_conflict=id", headers, row, &rows)
	if err != nil {
		return nil, err
	}
	// ignore-duplicates returns an empty set when the row already
	// existed; read it back so the caller always sees the profile.
	if len(rows) == 0 {
		existing, err := p.Get(ctx, profile.Id)
		if err != nil {
			return nil, err
		}
		rows = []*entities.Profile{existing}
	}
	return rows, nil
}

func (p *profileStoreSupabase) Get(ctx context.Context, userId string) (*entities.Profile, error) {
	path := fmt.Sprintf(
		"/rest/v1/profiles?id=eq.%s&select=id,name,role,xp,leaderboard_position",
		url.QueryEscape(userId),
	)
	profile := &entities.Profile{}
	if err := p.c.DoJSON(ctx, "GET", path, singleRowHeaders, nil, profile); err != nil {
		return nil, notFound(err, userId)
	}
	return profile, nil
}

func (p *profileStoreSupabase) GetXp(ctx context.Context, userId string) (int, error) {
	path := fmt.Sprintf("/rest/v1/profiles?id=eq.%s&select=xp", url.QueryEscape(userId))
	res := &struct {
		Xp int `json:"xp"`
	}{}
	if err := p.c.DoJSON(ctx, "GET", path, singleRowHeaders, nil, res); err != nil {
		return 0, notFound(err, userId)
	}
	return res.Xp, nil
}

func (p *profileStoreSupabase) CompareAndSetXp(ctx context.Context, userId string, currentXp, newXp int) (bool, error) {
	path := fmt.Sprintf(
		"/rest/v1/profiles?id=eq.%s&xp=eq.%d",
		url.QueryEscape(userId), currentXp,
	)
	headers := map[string]string{
		"Prefer": "return=representation",
	}
	var rows []*entities.Profile
	err := p.c.DoJSON(ctx, "PATCH", path, headers, map[string]any{"xp": newXp}, &rows)
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (p *profileStoreSupabase) Leaderboard(ctx context.Context, limit int) ([]*entities.LeaderboardEntry, error) {
	path := fmt.Sprintf(
		"/rest/v1/profiles?select=name,xp,leaderboard_position&order=leaderboard_position.asc&limit=%d",
		limit,
	)
	var entries []*entities.LeaderboardEntry
	if err := p.c.DoJSON(ctx, "GET", path, nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
