package repositories

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/questforge/gateway/app_errors"
	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProfileStore(t *testing.T, handler http.HandlerFunc) ProfileStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := supabase.NewClient(srv.URL, "service-role-key", 5*time.Second)
	return NewProfileStore(&supabase.ServiceClient{Client: client})
}

func TestProfileStoreGet(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/profiles", r.URL.Path)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		assert.Equal(t, "id,name,role,xp,leaderboard_position", r.URL.Query().Get("select"))
		assert.Equal(t, "service-role-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-role-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.pgrst.object+json", r.Header.Get("Accept"))

		json.NewEncoder(w).Encode(&entities.Profile{
			Id: "u1", Name: "Alice", Role: "scout", Xp: 75, LeaderboardPosition: 2,
		})
	})

	profile, err := store.Get(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Alice", profile.Name)
	require.Equal(t, 75, profile.Xp)
	require.Equal(t, 2, profile.LeaderboardPosition)
}

func TestProfileStoreGetNotFound(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotAcceptable)
		w.Write([]byte(`{"message":"JSON object requested, multiple (or no) rows returned"}`))
	})

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	require.Equal(t, app_errors.CodeNotFound, app_errors.Kind(err))
}

func TestProfileStoreUpsert(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "id", r.URL.Query().Get("on_conflict"))
		assert.Equal(t, "return=representation,resolution=ignore-duplicates", r.Header.Get("Prefer"))

		var row map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&row))
		assert.Equal(t, "u1", row["id"])
		assert.Equal(t, float64(0), row["xp"])

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode([]*entities.Profile{
			{Id: "u1", Name: "Alice", Role: "scout", Xp: 0},
		})
	})

	rows, err := store.Upsert(context.Background(), &entities.Profile{Id: "u1", Name: "Alice", Role: "scout"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, 0, rows[0].Xp)
}

func TestProfileStoreUpsertDuplicateReadsBackExistingRow(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			// ignore-duplicates: the insert is skipped and nothing
			// comes back.
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`[]`))
			return
		}
		json.NewEncoder(w).Encode(&entities.Profile{
			Id: "u1", Name: "Alice", Role: "scout", Xp: 40, LeaderboardPosition: 1,
		})
	})

	rows, err := store.Upsert(context.Background(), &entities.Profile{Id: "u1", Name: "Other", Role: "mage"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Alice", rows[0].Name)
	require.Equal(t, 40, rows[0].Xp)
}

func TestProfileStoreCompareAndSetXp(t *testing.T) {
	applied := true
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "eq.u1", r.URL.Query().Get("id"))
		assert.Equal(t, "eq.10", r.URL.Query().Get("xp"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		assert.Equal(t, float64(15), patch["xp"])

		if applied {
			json.NewEncoder(w).Encode([]*entities.Profile{{Id: "u1", Xp: 15}})
		} else {
			w.Write([]byte(`[]`))
		}
	})

	ok, err := store.CompareAndSetXp(context.Background(), "u1", 10, 15)
	require.NoError(t, err)
	require.True(t, ok)

	applied = false
	ok, err = store.CompareAndSetXp(context.Background(), "u1", 10, 15)
	require.NoError(t, err)
	require.False(t, ok, "an empty result set means a concurrent writer won")
}

func TestProfileStoreLeaderboard(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "name,xp,leaderboard_position", r.URL.Query().Get("select"))
		assert.Equal(t, "leaderboard_position.asc", r.URL.Query().Get("order"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		json.NewEncoder(w).Encode([]*entities.LeaderboardEntry{
			{Name: "Alice", Xp: 80, LeaderboardPosition: 1},
			{Name: "Bob", Xp: 55, LeaderboardPosition: 2},
		})
	})

	entries, err := store.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Alice", entries[0].Name)
	require.Equal(t, 1, entries[0].LeaderboardPosition)
}

func TestProfileStoreServerErrorIsDependencyUnavailable(t *testing.T) {
	store := newTestProfileStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := store.Get(context.Background(), "u1")
	require.Error(t, err)
	require.Equal(t, app_errors.CodeDependencyUnavailable, app_errors.Kind(err))
}
