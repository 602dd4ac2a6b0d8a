package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/questforge/gateway/app_errors"
	"github.com/questforge/gateway/entities"
	"github.com/questforge/gateway/supabase"
)

type AuthProvider interface {
	CreateAccount(ctx context.Context, email, password string) (*entities.Account, *entities.Session, error)
	VerifyCredentials(ctx context.Context, email, password string) (*entities.Account, *entities.Session, error)
}

type authProviderSupabase struct {
	c *supabase.AnonClient
}

func NewAuthProvider(c *supabase.AnonClient) AuthProvider {
	return &authProviderSupabase{c: c}
}

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// gotrueAuthResponse covers both response shapes of the auth API: a
// bare user object (signup with confirmation pending) and a session
// with an embedded user.
type gotrueAuthResponse struct {
	Id           string            `json:"id"`
	Email        string            `json:"email"`
	CreatedAt    string            `json:"created_at"`
	AccessToken  string            `json:"access_token"`
	TokenType    string            `json:"token_type"`
	ExpiresIn    int               `json:"expires_in"`
	RefreshToken string            `json:"refresh_token"`
	User         *entities.Account `json:"user"`
}

func (r *gotrueAuthResponse) account() *entities.Account {
	if r.User != nil {
		return r.User
	}
	return &entities.Account{Id: r.Id, Email: r.Email, CreatedAt: r.CreatedAt}
}

func (r *gotrueAuthResponse) session() *entities.Session {
	if r.AccessToken == "" {
		return nil
	}
	return &entities.Session{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		ExpiresIn:    r.ExpiresIn,
		RefreshToken: r.RefreshToken,
	}
}

type gotrueError struct {
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	ErrorDescription string `json:"error_description"`
}

func (e *gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription} {
		if s != "" {
			return s
		}
	}
	return "request rejected by auth provider"
}

func parseGotrueError(err error) (*gotrueError, bool) {
	// an outage is not a credential problem; leave it classified
	if app_errors.Kind(err) == app_errors.CodeDependencyUnavailable {
		return nil, false
	}
	var statusErr *supabase.StatusError
	if !errors.As(err, &statusErr) {
		return nil, false
	}
	ge := &gotrueError{}
	if jsonErr := json.Unmarshal(statusErr.Body, ge); jsonErr != nil {
		return &gotrueError{Message: string(statusErr.Body)}, true
	}
	return ge, true
}

func (a *authProviderSupabase) CreateAccount(ctx context.Context, email, password string) (*entities.Account, *entities.Session, error) {
	res := &gotrueAuthResponse{}
	err := a.c.DoJSON(ctx, "POST", "/auth/v1/signup", nil, &credentialsPayload{Email: email, Password: password}, res)
	if err != nil {
		ge, ok := parseGotrueError(err)
		if !ok {
			return nil, nil, err
		}
		switch {
		case ge.ErrorCode == "user_already_exists" || ge.ErrorCode == "email_exists" ||
			strings.Contains(strings.ToLower(ge.text()), "already registered"):
			return nil, nil, app_errors.DuplicateAccount("account already exists for %s", email)
		case ge.ErrorCode == "weak_password" ||
			strings.Contains(strings.ToLower(ge.text()), "password"):
			return nil, nil, app_errors.WeakPassword("%s", ge.text())
		default:
			return nil, nil, app_errors.Validation("%s", ge.text())
		}
	}
	return res.account(), res.session(), nil
}

func (a *authProviderSupabase) VerifyCredentials(ctx context.Context, email, password string) (*entities.Account, *entities.Session, error) {
	res := &gotrueAuthResponse{}
	err := a.c.DoJSON(ctx, "POST", "/auth/v1/token?grant_type=password", nil, &credentialsPayload{Email: email, Password: password}, res)
	if err != nil {
		if _, ok := parseGotrueError(err); ok {
			return nil, nil, app_errors.InvalidCredentials("invalid email or password")
		}
		return nil, nil, err
	}
	return res.account(), res.session(), nil
}
