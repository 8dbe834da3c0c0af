package service

import (
	"context"
	"crypto/subtle"
	"fmt"

	"github.com/google/uuid"
	"github.com/medflow/medsupply-backend/internal/auth/jwt"
	"github.com/medflow/medsupply-backend/internal/pharmacy/domain"
	"github.com/medflow/medsupply-backend/internal/pharmacy/state"
	"github.com/medflow/medsupply-backend/pkg/config"
	"github.com/medflow/medsupply-backend/pkg/errors"
	"github.com/medflow/medsupply-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// LoginRequest is the operator credential
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the access token and the new session
type LoginResponse struct {
	*jwt.Token
	Session *domain.Session `json:"session"`
	Message string          `json:"message"`
}

// Authenticator checks the single configured operator credential and ties
// access tokens to the session stored in the snapshot.
type Authenticator struct {
	svc          *PharmacyService
	jwt          *jwt.Manager
	username     string
	passwordHash []byte
	logger       *logger.Logger
}

// NewAuthenticator hashes cfg.Password with bcrypt unless a hash is
// configured already.
func NewAuthenticator(svc *PharmacyService, manager *jwt.Manager, cfg *config.AuthConfig, log *logger.Logger) (*Authenticator, error) {
	hash := []byte(cfg.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash operator password: %w", err)
		}
	}

	return &Authenticator{
		svc:          svc,
		jwt:          manager,
		username:     cfg.Username,
		passwordHash: hash,
		logger:       log.WithComponent("authenticator"),
	}, nil
}

// Login starts a new session. Any previous session is replaced, which
// revokes its tokens.
func (a *Authenticator) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if !a.checkCredentials(req.Username, req.Password) {
		a.logger.Warn().Str("username", req.Username).Msg("login rejected")
		a.svc.flash.Show(domain.FlashError, "Invalid credentials")
		return nil, errors.InvalidCredentials()
	}

	sessionID := uuid.NewString()
	notice, err := a.svc.Execute(ctx, &state.StartSession{SessionID: sessionID, Username: req.Username})
	if err != nil {
		return nil, err
	}

	token, err := a.jwt.Generate(req.Username, sessionID)
	if err != nil {
		return nil, errors.Internal("failed to generate token")
	}

	return &LoginResponse{Token: token, Session: a.svc.Session(), Message: notice}, nil
}

// Logout ends the current session
func (a *Authenticator) Logout(ctx context.Context) (string, error) {
	return a.svc.Execute(ctx, &state.EndSession{})
}

// VerifyToken validates token and checks that it belongs to the session on
// record.
func (a *Authenticator) VerifyToken(token string) (string, string, error) {
	claims, err := a.jwt.Validate(token)
	if err != nil {
		return "", "", err
	}

	sess := a.svc.Session()
	if sess == nil || sess.ID != claims.SessionID {
		return "", "", errors.Unauthorized("session has ended")
	}

	return claims.Username, claims.SessionID, nil
}

func (a *Authenticator) checkCredentials(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
