package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// httpClient is shared by all bot users so connections get pooled.
var httpClient *http.Client

type Config struct {
	BaseURL     string
	RequestRate time.Duration
	UserCount   int
	Password    string
}

type BotUser struct {
	ID          string
	Name        string
	AccessToken string
}

var roles = []string{"scout", "mage", "knight", "ranger", "alchemist"}

var nameParts = struct {
	adjectives []string
	nouns      []string
}{
	adjectives: []string{
		"Brave", "Calm", "Clever", "Swift", "Bright", "Bold", "Quiet", "Lucky",
		"Merry", "Noble", "Quick", "Sunny", "Wise", "Witty", "Eager", "Gentle",
	},
	nouns: []string{
		"Explorer", "Scout", "Seeker", "Wanderer", "Climber", "Runner", "Scholar",
		"Pilot", "Ranger", "Knight", "Wizard", "Captain", "Dreamer", "Builder",
	},
}

func generateName() string {
	adjective := nameParts.adjectives[rand.Intn(len(nameParts.adjectives))]
	noun := nameParts.nouns[rand.Intn(len(nameParts.nouns))]
	return fmt.Sprintf("%s%s%d", adjective, noun, rand.Intn(100))
}

func initHTTPClient() {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	httpClient = &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	initHTTPClient()
	config := loadConfig()

	users, err := enrollUsers(config)
	if err != nil {
		slog.Error("Failed to enroll users", "error", err)
		os.Exit(1)
	}
	slog.Info("Enrolled users", "count", len(users))

	runBots(config, users)
}

func loadConfig() Config {
	config := Config{
		BaseURL:     "http://localhost:3000",
		RequestRate: 1 * time.Second,
		UserCount:   1,
		Password:    "bot-password-1",
	}

	if baseURL := os.Getenv("BOT_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}
	if rateStr := os.Getenv("BOT_REQUEST_RATE_MS"); rateStr != "" {
		if rateMs, err := strconv.Atoi(rateStr); err == nil {
			config.RequestRate = time.Duration(rateMs) * time.Millisecond
		} else {
			slog.Warn("Invalid BOT_REQUEST_RATE_MS value, using default",
				"value", rateStr,
				"default", config.RequestRate.String())
		}
	}
	if userCountStr := os.Getenv("BOT_USER_COUNT"); userCountStr != "" {
		if userCount, err := strconv.Atoi(userCountStr); err == nil && userCount > 0 {
			config.UserCount = userCount
		} else {
			slog.Warn("Invalid BOT_USER_COUNT value, using default",
				"value", userCountStr,
				"default", config.UserCount)
		}
	}
	if password := os.Getenv("BOT_PASSWORD"); password != "" {
		config.Password = password
	}

	slog.Info("Configuration loaded",
		"base_url", config.BaseURL,
		"request_rate", config.RequestRate.String(),
		"user_count", config.UserCount)

	return config
}

// enrollUsers signs up each bot user and creates its profile.
func enrollUsers(config Config) ([]BotUser, error) {
	var users []BotUser
	var mu sync.Mutex
	var wg sync.WaitGroup

	errChan := make(chan error, config.UserCount)

	for i := 0; i < config.UserCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := generateName()
			user, err := enrollUser(config, name)
			if err != nil {
				errChan <- fmt.Errorf("failed to enroll %s: %w", name, err)
				return
			}
			mu.Lock()
			users = append(users, user)
			mu.Unlock()
			slog.Info("Enrolled user", "name", user.Name, "user_id", user.ID)
		}()
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}
	return users, nil
}

func enrollUser(config Config, name string) (BotUser, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	email := fmt.Sprintf("%s-%s@bots.example.com",
		strings.ToLower(name), uuid.NewString()[:8])

	// /signup returns either a bare account or {user, session}
	// depending on whether the account was auto-confirmed.
	var signUpResp struct {
		Id      string `json:"id"`
		User    *struct {
			Id string `json:"id"`
		} `json:"user"`
		Session *struct {
			AccessToken string `json:"access_token"`
		} `json:"session"`
	}
	err := postJSON(ctx, config.BaseURL+"/signup", "", map[string]string{
		"email":    email,
		"password": config.Password,
	}, &signUpResp)
	if err != nil {
		return BotUser{}, err
	}

	user := BotUser{ID: signUpResp.Id, Name: name}
	if signUpResp.User != nil {
		user.ID = signUpResp.User.Id
	}
	if signUpResp.Session != nil {
		user.AccessToken = signUpResp.Session.AccessToken
	} else {
		var logInResp struct {
			Session struct {
				AccessToken string `json:"access_token"`
			} `json:"session"`
		}
		err := postJSON(ctx, config.BaseURL+"/login", "", map[string]string{
			"email":    email,
			"password": config.Password,
		}, &logInResp)
		if err != nil {
			return BotUser{}, err
		}
		user.AccessToken = logInResp.Session.AccessToken
	}

	role := roles[rand.Intn(len(roles))]
	err = postJSON(ctx, config.BaseURL+"/profile", user.AccessToken, map[string]string{
		"user_id": user.ID,
		"name":    user.Name,
		"role":    role,
	}, nil)
	if err != nil {
		return BotUser{}, err
	}
	return user, nil
}

func runBots(config Config, users []BotUser) {
	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(u BotUser) {
			defer wg.Done()
			grantXpForever(config, u)
		}(user)
	}
	wg.Wait()
}

func grantXpForever(config Config, user BotUser) {
	ticker := time.NewTicker(config.RequestRate)
	defer ticker.Stop()

	tickCount := 0
	for range ticker.C {
		tickCount++
		delta := rand.Intn(46) + 5

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		var xpResp struct {
			Xp int `json:"xp"`
		}
		err := postJSON(ctx, config.BaseURL+"/profile/xp", user.AccessToken, map[string]any{
			"user_id": user.ID,
			"xp":      delta,
		}, &xpResp)
		cancel()
		if err != nil {
			slog.Error("Failed to add xp", "name", user.Name, "error", err)
			continue
		}
		slog.Info("Added xp", "name", user.Name, "delta", delta, "total", xpResp.Xp)

		if tickCount%10 == 0 {
			logLeaderboard(config, user)
		}
	}
}

func logLeaderboard(config Config, user BotUser) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, config.BaseURL+"/leaderboard", nil)
	if err != nil {
		slog.Error("Failed to create leaderboard request", "error", err)
		return
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		slog.Error("Failed to fetch leaderboard", "name", user.Name, "error", err)
		return
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	var entries []struct {
		Name                string `json:"name"`
		Xp                  int    `json:"xp"`
		LeaderboardPosition int    `json:"leaderboard_position"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		slog.Error("Failed to decode leaderboard", "error", err)
		return
	}
	if len(entries) > 0 {
		slog.Info("Leaderboard top",
			"name", entries[0].Name,
			"xp", entries[0].Xp,
			"position", entries[0].LeaderboardPosition,
			"entries", len(entries))
	}
}

func postJSON(ctx context.Context, url, accessToken string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("request to %s failed with status %d: %s", url, resp.StatusCode, string(respBody))
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
