package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"filesmanager/internal/util"
	"filesmanager/pkg/auth"
	"filesmanager/pkg/domain"
	"filesmanager/pkg/storage"
	"filesmanager/pkg/store"
)

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 86400 * time.Second

const sessionKeyPrefix = "auth_"

// Config wires the collaborators of the core. All stores are required.
type Config struct {
	Users      store.UserStore
	Files      store.FileStore
	Sessions   store.SessionStore
	Blobs      storage.BlobStore
	SessionTTL time.Duration
	Now        func() time.Time
}

// App is the authorization core: it issues and resolves sessions and gates
// every read and write of file records.
type App struct {
	users      store.UserStore
	files      store.FileStore
	sessions   store.SessionStore
	blobs      storage.BlobStore
	sessionTTL time.Duration
	now        func() time.Time
	validate   *validator.Validate

	decoyOnce sync.Once
	decoyHash string
}

// New constructs the core from explicitly provided stores.
func New(cfg Config) (*App, error) {
	if cfg.Users == nil {
		return nil, errors.New("user store required")
	}
	if cfg.Files == nil {
		return nil, errors.New("file store required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store required")
	}
	if cfg.Blobs == nil {
		return nil, errors.New("blob store required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &App{
		users:      cfg.Users,
		files:      cfg.Files,
		sessions:   cfg.Sessions,
		blobs:      cfg.Blobs,
		sessionTTL: cfg.SessionTTL,
		now:        cfg.Now,
		validate:   validator.New(),
	}, nil
}

type registration struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

// Register creates a user with a hashed password. Emails are case-sensitive.
func (a *App) Register(ctx context.Context, email, password string) (domain.User, error) {
	req := registration{Email: strings.TrimSpace(email), Password: password}
	if err := a.validate.Struct(req); err != nil {
		return domain.User{}, registrationError(err)
	}
	_, exists, err := a.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, ErrEmailAlreadyExists
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	user, err := a.users.InsertUser(ctx, req.Email, hash)
	if errors.Is(err, store.ErrDuplicateEmail) {
		return domain.User{}, ErrEmailAlreadyExists
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func registrationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ValidationError{Field: "body", Message: "Invalid request"}
	}
	fe := fieldErrs[0]
	switch {
	case fe.StructField() == "Email" && fe.Tag() == "required":
		return missing("email", "email")
	case fe.StructField() == "Email":
		return &ValidationError{Field: "email", Message: "Invalid email"}
	default:
		return missing("password", "password")
	}
}

// Login checks credentials and issues a new session token.
func (a *App) Login(ctx context.Context, email, password string) (string, error) {
	user, ok, err := a.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		// burn a comparison so unknown emails cost the same as wrong passwords
		auth.CheckPassword(password, a.decoy())
		return "", ErrUnauthorized
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return "", ErrUnauthorized
	}
	token := auth.NewSessionToken()
	if err := a.sessions.Set(ctx, sessionKey(token), user.ID, a.sessionTTL); err != nil {
		return "", fmt.Errorf("issue session: %w", err)
	}
	return token, nil
}

func (a *App) decoy() string {
	a.decoyOnce.Do(func() {
		a.decoyHash, _ = auth.HashPassword(util.NewID())
	})
	return a.decoyHash
}

// Logout revokes the session held under token. Unknown tokens are a no-op.
func (a *App) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := a.sessions.Delete(ctx, sessionKey(token)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to its user.
func (a *App) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, ErrUnauthorized
	}
	userID, ok, err := a.sessions.Get(ctx, sessionKey(token))
	if err != nil {
		return domain.User{}, fmt.Errorf("lookup session: %w", err)
	}
	if !ok {
		return domain.User{}, ErrUnauthorized
	}
	user, found, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !found {
		return domain.User{}, ErrUnauthorized
	}
	return user, nil
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

// Status reports backend liveness.
type Status struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// Status pings the session cache and the file repository concurrently.
func (a *App) Status(ctx context.Context) Status {
	var st Status
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		st.Redis = ping(gctx, a.sessions)
		return nil
	})
	g.Go(func() error {
		st.DB = ping(gctx, a.files)
		return nil
	})
	_ = g.Wait()
	return st
}

func ping(ctx context.Context, backend any) bool {
	p, ok := backend.(store.Pinger)
	if !ok {
		return true
	}
	return p.Ping(ctx) == nil
}

// Stats reports record totals.
type Stats struct {
	Users int `json:"users"`
	Files int `json:"files"`
}

// Stats counts users and file records when the repository supports it.
func (a *App) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if c, ok := a.users.(store.Counter); ok {
		n, err := c.UserCount(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("count users: %w", err)
		}
		st.Users = n
	}
	if c, ok := a.files.(store.Counter); ok {
		n, err := c.FileCount(ctx)
		if err != nil {
			return Stats{}, fmt.Errorf("count files: %w", err)
		}
		st.Files = n
	}
	return st, nil
}
