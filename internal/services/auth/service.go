// Package auth registers and authenticates users, issues bearer tokens, and
// runs the OTP-based password reset flow.
package auth

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/logger"
	"franchisehub-api/internal/mailer"
	"franchisehub-api/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	uniqueViolation = "23505"

	resetKeyPrefix   = "reset:"
	revokedKeyPrefix = "revoked:"
)

// MailEnqueuer hands reset-code emails to the async dispatcher.
type MailEnqueuer interface {
	Enqueue(job mailer.Job)
}

type Service struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	tokens *TokenManager
	mail   MailEnqueuer
	logger logger.Logger
}

func NewService(config *Config, db *sql.DB, rdb *redis.Client, mail MailEnqueuer, log logger.Logger) *Service {
	return &Service{
		config: config,
		db:     db,
		redis:  rdb,
		tokens: NewTokenManager(config.JWTSecret, config.Issuer),
		mail:   mail,
		logger: log.WithFields(map[string]interface{}{"service": "auth"}),
	}
}

// Tokens exposes the token manager for the HTTP auth middleware.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates a user account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if input.Name == "" || input.Email == "" {
		return nil, stderrors.NewValidationError("name and email are required")
	}
	if len(input.Password) < 8 {
		return nil, stderrors.NewValidationError("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, stderrors.NewInternalError(err)
	}

	user := models.User{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Email:     input.Email,
		IsAdmin:   s.config.isAdminEmail(input.Email),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, string(hash), user.IsAdmin, user.CreatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return nil, stderrors.NewDuplicateEmailError(input.Email)
		}
		return nil, stderrors.NewPersistenceError(err)
	}

	s.logger.Info("user registered", map[string]interface{}{
		"userId": user.ID,
	})

	return &user, nil
}

// Login verifies credentials and issues a bearer token.
func (s *Service) Login(ctx context.Context, input *LoginInput) (*LoginOutput, error) {
	var user models.User
	var hash string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, is_admin, created_at
		FROM users WHERE email = $1`,
		input.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &hash, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, stderrors.NewAuthenticationError("unknown email or wrong password")
		}
		return nil, stderrors.NewPersistenceError(err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Password)); err != nil {
		return nil, stderrors.NewAuthenticationError("unknown email or wrong password")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.IsAdmin, s.config.TokenTTL)
	if err != nil {
		return nil, stderrors.NewInternalError(err)
	}

	return &LoginOutput{Token: token, User: user}, nil
}

// Logout denylists the token id until its natural expiry.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := s.redis.Set(ctx, revokedKeyPrefix+claims.ID, "1", ttl).Err(); err != nil {
		return stderrors.NewPersistenceError(err)
	}
	return nil
}

// IsRevoked reports whether a token id has been denylisted by Logout.
func (s *Service) IsRevoked(ctx context.Context, tokenID string) bool {
	_, err := s.redis.Get(ctx, revokedKeyPrefix+tokenID).Result()
	return err == nil
}

// ForgotPassword stores a one-time reset code with the configured TTL and
// emails it to the account address. An unknown email gets the same success
// response so the endpoint cannot be used to probe for accounts.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	var userID string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM users WHERE email = $1`, email,
	).Scan(&userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return stderrors.NewPersistenceError(err)
	}

	code, err := generateResetCode()
	if err != nil {
		return stderrors.NewInternalError(err)
	}

	if err := s.redis.Set(ctx, resetKeyPrefix+email, code, s.config.ResetCodeTTL).Err(); err != nil {
		return stderrors.NewPersistenceError(err)
	}

	if s.mail != nil {
		s.mail.Enqueue(mailer.Job{
			Type:      mailer.TypePasswordReset,
			Recipient: email,
			Data: map[string]interface{}{
				"code":       code,
				"ttlMinutes": int(s.config.ResetCodeTTL.Minutes()),
			},
		})
	}

	s.logger.Info("reset code issued", map[string]interface{}{
		"userId": userID,
	})

	return nil
}

// ResetPassword consumes a valid reset code and stores the new hash. The code
// expires out of the store on its own; a missing key and a wrong code are the
// same failure.
func (s *Service) ResetPassword(ctx context.Context, input *ResetInput) error {
	if len(input.NewPassword) < 8 {
		return stderrors.NewValidationError("password must be at least 8 characters")
	}

	stored, err := s.redis.Get(ctx, resetKeyPrefix+input.Email).Result()
	if err != nil || stored != input.Code {
		return stderrors.NewAuthenticationError("invalid or expired reset code")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return stderrors.NewInternalError(err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $1 WHERE email = $2`,
		string(hash), input.Email,
	)
	if err != nil {
		return stderrors.NewPersistenceError(err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return stderrors.NewNotFoundError("user", input.Email)
	}

	// Single use: drop the code once the new hash is in place.
	s.redis.Del(ctx, resetKeyPrefix+input.Email)

	s.logger.Info("password reset", map[string]interface{}{
		"email": input.Email,
	})

	return nil
}

func generateResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
