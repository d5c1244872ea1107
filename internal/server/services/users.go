package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/auth"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/mailer"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
)

// VerificationValidity bounds how long an emailed code can be redeemed.
const VerificationValidity = 10 * time.Minute

type UserService struct {
	users                       users.Repository
	mailer                      mailer.Mailer
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
	logger                      logging.Logger
	now                         func() time.Time
}

func NewUserService(m repomanager.RepositoryManager, ml mailer.Mailer, cfg *config.Config, logger logging.Logger) *UserService {
	return &UserService{
		users:                       m.Users(),
		mailer:                      ml,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  bcrypt.DefaultCost,
		logger:                      logger.With("module", "users"),
		now:                         time.Now,
	}
}

// Register creates an unverified account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("username, email and password are required: %w", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, &models.User{
		Username:  username,
		Email:     email,
		Password:  string(hash),
		CreatedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, fmt.Errorf("user %s: %w", email, common.ErrorAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "email", email)
	user.Password = ""
	return user, nil
}

// Login checks the password and returns an access token.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}

	token, err := auth.GenerateToken(user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

func (s *UserService) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, common.ErrorInternal
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, common.ErrorUnauthorized
	}
	return user, nil
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, email, current, next string) error {
	if next == "" {
		return fmt.Errorf("new password is required: %w", common.ErrorValidation)
	}
	user, err := s.authenticate(ctx, email, current)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.Email, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	s.logger.Info(ctx, "password updated", "email", user.Email)
	return nil
}

// RequestEmailVerification mails a fresh numeric code to the account and
// returns a signed challenge the caller presents together with the code.
// Codes are not stored; the challenge carries a keyed MAC of the code and
// its expiry.
func (s *UserService) RequestEmailVerification(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", fmt.Errorf("user not found: %w", common.ErrorNotFound)
		}
		return "", fmt.Errorf("get user: %w", err)
	}

	code, err := common.MakeNumericCode(common.VerificationCodeDigits)
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	challenge, err := auth.GenerateChallenge(user.Email, code, s.jwtSecret, VerificationValidity)
	if err != nil {
		return "", common.ErrorInternal
	}

	body, err := mailer.VerificationBody(user.Username, code, int(VerificationValidity/time.Minute))
	if err != nil {
		return "", fmt.Errorf("render email: %w", err)
	}
	if err := s.mailer.Send(ctx, user.Email, mailer.VerificationSubject, body); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorExternalStore, err)
	}

	return challenge, nil
}

// VerifyEmail redeems a challenge issued by RequestEmailVerification.
func (s *UserService) VerifyEmail(ctx context.Context, challenge, code string) error {
	claims, err := auth.ParseChallenge(challenge, s.jwtSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}
	if !claims.Matches(code, s.jwtSecret) {
		return common.ErrorUnauthorized
	}

	if err := s.users.SetEmailVerified(ctx, claims.Email, true); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return fmt.Errorf("user not found: %w", common.ErrorNotFound)
		}
		return fmt.Errorf("mark email verified: %w", err)
	}
	s.logger.Info(ctx, "email verified", "email", claims.Email)
	return nil
}

// Authenticate resolves an access token to the owner email.
func (s *UserService) Authenticate(token string) (string, error) {
	email, err := auth.GetEmailFromToken(token, s.jwtSecret)
	if err != nil {
		return "", common.ErrorUnauthorized
	}
	return email, nil
}
