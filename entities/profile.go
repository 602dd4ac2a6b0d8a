package entities

// Profile is one row of the profiles table. LeaderboardPosition is
// maintained by a store-side trigger and never written by this service.
type Profile struct {
	Id                  string `json:"id"`
	Name                string `json:"name"`
	Role                string `json:"role"`
	Xp                  int    `json:"xp"`
	LeaderboardPosition int    `json:"leaderboard_position"`
}

type LeaderboardEntry struct {
	Name                string `json:"name"`
	Xp                  int    `json:"xp"`
	LeaderboardPosition int    `json:"leaderboard_position"`
}
