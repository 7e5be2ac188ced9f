package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"brainwaves/internal/domain"
	"brainwaves/internal/email"
	"brainwaves/internal/repository"
)

// UserService coordinates teacher account management. Passwords are never
// chosen by an admin: new accounts and resets get a random one that the
// user is forced to replace on first login.
type UserService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	emailSender email.Sender
}

func NewUserService(logger *zap.Logger, users repository.UserRepository, emailSender email.Sender) *UserService {
	return &UserService{
		logger:      logger,
		users:       users,
		emailSender: emailSender,
	}
}

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrWeakPassword       = errors.New("password too short")
)

const (
	generatedPasswordLength = 8
	minPasswordLength       = 8
	passwordAlphabet        = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CreateUser registers a teacher account with a generated password and
// returns it alongside the record; it is shown once to the creating
// superuser and emailed to the new user when a sender is configured.
func (s *UserService) CreateUser(ctx context.Context, emailAddr string, superuser bool) (domain.User, string, error) {
	if s.users == nil {
		return domain.User{}, "", errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" || !strings.Contains(emailAddr, "@") {
		return domain.User{}, "", ErrInvalidEmail
	}

	if _, err := s.users.GetByEmail(ctx, emailAddr); err == nil {
		return domain.User{}, "", ErrUserExists
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, "", err
	}

	password, err := generatePassword()
	if err != nil {
		return domain.User{}, "", err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	user := domain.User{
		ID:                    uuid.NewString(),
		Email:                 emailAddr,
		PasswordHash:          string(hashBytes),
		Superuser:             superuser,
		Active:                true,
		ChangePasswordOnLogin: true,
		CreatedAt:             time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, "", err
	}

	if s.emailSender != nil {
		if err := s.emailSender.SendInitialPassword(ctx, emailAddr, password); err != nil {
			// Credentials are still returned to the superuser, so a dead
			// SMTP server must not fail account creation.
			if s.logger != nil {
				s.logger.Warn("send initial password failed", zap.Error(err), zap.String("email", emailAddr))
			}
		}
	}

	return user, password, nil
}

// ResetPassword replaces a user's password with a fresh random one and
// flags the account to change it on next login.
func (s *UserService) ResetPassword(ctx context.Context, userID string) (domain.User, string, error) {
	if s.users == nil {
		return domain.User{}, "", errors.New("user service not configured")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, "", ErrUserNotFound
		}
		return domain.User{}, "", err
	}

	password, err := generatePassword()
	if err != nil {
		return domain.User{}, "", err
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, "", err
	}

	if err := s.users.UpdatePassword(ctx, user.ID, string(hashBytes), true); err != nil {
		return domain.User{}, "", err
	}
	user.PasswordHash = string(hashBytes)
	user.ChangePasswordOnLogin = true
	return user, password, nil
}

func (s *UserService) Authenticate(ctx context.Context, emailAddr, password string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errors.New("user service not configured")
	}

	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !user.Active || user.PasswordHash == "" {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// ChangePassword verifies the current password and installs a new one,
// clearing the change-on-login flag.
func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	if s.users == nil {
		return errors.New("user service not configured")
	}

	next = strings.TrimSpace(next)
	if len(next) < minPasswordLength {
		return ErrWeakPassword
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(strings.TrimSpace(current))); err != nil {
		return ErrInvalidCredentials
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hashBytes), false)
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	if s.users == nil {
		return nil, errors.New("user service not configured")
	}
	return s.users.List(ctx)
}

func generatePassword() (string, error) {
	out := make([]byte, generatedPasswordLength)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = passwordAlphabet[n.Int64()]
	}
	return string(out), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
