package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
	verifyTokenTTL    = 24 * time.Hour
	resetTokenTTL     = time.Hour
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Session is what a successful login returns.
type Session struct {
	Token   string
	Account *domain.Account
}

type AccountService struct {
	accounts    repository.AccountRepository
	mailer      Mailer
	identity    IdentityProvider
	tokens      TokenIssuer
	frontendURL string
	log         *slog.Logger
	now         func() time.Time
	hashCost    int
}

func NewAccountService(accounts repository.AccountRepository, mailer Mailer, identity IdentityProvider,
	tokens TokenIssuer, frontendURL string, log *slog.Logger) *AccountService {
	return &AccountService{
		accounts:    accounts,
		mailer:      mailer,
		identity:    identity,
		tokens:      tokens,
		frontendURL: frontendURL,
		log:         log,
		now:         time.Now,
		hashCost:    bcrypt.DefaultCost,
	}
}

// Register creates an unverified account and mails the verification link.
// If the mail cannot be sent the account is removed again so the address
// can register later.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*domain.Account, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	if _, err := s.accounts.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	account := &domain.Account{
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		Role:          domain.RoleUser,
		Provider:      domain.ProviderPassword,
		VerifyToken:   uuid.NewString(),
		VerifyExpires: s.now().Add(verifyTokenTTL).UTC(),
		Cart:          domain.Cart{},
		CreatedAt:     s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}

	link := s.link("/verify-email", account.VerifyToken)
	if err := s.mailer.SendVerification(ctx, account.Email, account.Name, link); err != nil {
		s.log.ErrorContext(ctx, "verification email failed, removing account", "account_id", account.ID, "error", err)
		if errDel := s.accounts.Delete(context.WithoutCancel(ctx), account.ID); errDel != nil {
			s.log.ErrorContext(ctx, "failed to remove account", "account_id", account.ID, "error", errDel)
		}
		return nil, providerError("email", err)
	}

	s.log.InfoContext(ctx, "account registered", "account_id", account.ID)
	return account, nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	account, err := s.accounts.GetByVerifyToken(ctx, token)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if s.now().After(account.VerifyExpires) {
		return ErrInvalidToken
	}
	return s.accounts.MarkVerified(ctx, account.ID)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.checkPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !account.Verified {
		return nil, ErrEmailNotVerified
	}
	return s.session(account)
}

func (s *AccountService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	account, err := s.checkPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if !account.IsAdmin() {
		return nil, ErrInvalidCredentials
	}
	return s.session(account)
}

// ForgotPassword mails a reset link when the address is known. Unknown
// addresses get the same response so accounts cannot be probed.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.accounts.SetResetToken(ctx, account.ID, token, s.now().Add(resetTokenTTL).UTC()); err != nil {
		return err
	}
	if err := s.mailer.SendPasswordReset(ctx, account.Email, account.Name, s.link("/reset-password", token)); err != nil {
		s.log.ErrorContext(ctx, "password reset email failed", "account_id", account.ID, "error", err)
		return providerError("email", err)
	}
	return nil
}

func (s *AccountService) ResetPassword(ctx context.Context, token, password string) error {
	if err := checkPasswordLength(password); err != nil {
		return err
	}
	account, err := s.accounts.GetByResetToken(ctx, token)
	if errors.Is(err, repository.ErrAccountNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return err
	}
	if s.now().After(account.ResetExpires) {
		return ErrInvalidToken
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return err
	}
	// The link reached the mailbox, which proves ownership of the address
	if !account.Verified {
		return s.accounts.MarkVerified(ctx, account.ID)
	}
	return nil
}

// GoogleLogin exchanges an authorization code and signs in the matching
// account, creating a verified one on first use.
func (s *AccountService) GoogleLogin(ctx context.Context, code string) (*Session, error) {
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrInvalidInput)
	}
	profile, err := s.identity.Exchange(ctx, code)
	if err != nil {
		s.log.WarnContext(ctx, "google sign-in failed", "error", err)
		return nil, ErrInvalidCredentials
	}
	email := normalizeEmail(profile.Email)

	account, err := s.accounts.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrAccountNotFound):
		account = &domain.Account{
			Name:      profile.Name,
			Email:     email,
			Role:      domain.RoleUser,
			Provider:  domain.ProviderGoogle,
			Verified:  true,
			Cart:      domain.Cart{},
			CreatedAt: s.now().UTC(),
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			if !errors.Is(err, repository.ErrEmailTaken) {
				return nil, err
			}
			// Lost a race with a concurrent first login
			if account, err = s.accounts.GetByEmail(ctx, email); err != nil {
				return nil, err
			}
		}
	case err != nil:
		return nil, err
	case !account.Verified:
		// Nobody proved ownership of the stored password
		if err := s.accounts.LinkGoogle(ctx, account.ID); err != nil {
			return nil, err
		}
		account.Verified = true
		account.Provider = domain.ProviderGoogle
		account.PasswordHash = ""
		account.VerifyToken = ""
		account.ResetToken = ""
	}

	return s.session(account)
}

// EnsureAdmin creates the bootstrap admin account if the address is free.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	existing, err := s.accounts.GetByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.log.WarnContext(ctx, "admin address belongs to a regular account", "account_id", existing.ID)
		}
		return nil
	}
	if !errors.Is(err, repository.ErrAccountNotFound) {
		return err
	}
	if err := checkPasswordLength(password); err != nil {
		return err
	}

	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	err = s.accounts.Create(ctx, &domain.Account{
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Provider:     domain.ProviderPassword,
		Verified:     true,
		Cart:         domain.Cart{},
		CreatedAt:    s.now().UTC(),
	})
	if err != nil && !errors.Is(err, repository.ErrEmailTaken) {
		return err
	}
	s.log.InfoContext(ctx, "admin account ready", "email", email)
	return nil
}

func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accounts.GetByID(ctx, accountID)
}

func (s *AccountService) checkPassword(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrAccountNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if account.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return account, nil
}

func (s *AccountService) session(account *domain.Account) (*Session, error) {
	token, err := s.tokens.IssueAccess(account.ID, string(account.Role))
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Account: account}, nil
}

func (s *AccountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AccountService) link(path, token string) string {
	return s.frontendURL + path + "?token=" + url.QueryEscape(token)
}

func checkPasswordLength(password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, maxPasswordLength)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
