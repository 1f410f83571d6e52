package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/restaurant/domain"
	"github.com/fastygo/restaurant/pkg/httpcontext"
	appLogger "github.com/fastygo/restaurant/pkg/logger"
	"github.com/fastygo/restaurant/repository"
	"github.com/fastygo/restaurant/usecase"
)

const resetTokenBytes = 32

// TokenIssuer signs session tokens for a user ID.
type TokenIssuer interface {
	Create(userID string) (string, error)
}

type Config struct {
	BcryptCost      int
	ResetTokenTTL   time.Duration
	DefaultCurrency domain.Currency
}

// RegisterInput carries the fields accepted on sign-up.
type RegisterInput struct {
	FirstName       string
	LastName        string
	Login           string
	Email           string
	Password        string
	Addresses       []domain.Address
	Roles           []domain.Role
	DefaultCurrency domain.Currency
}

type UseCase struct {
	users   repository.UserRepository
	reviews repository.ReviewRepository
	resets  repository.ResetTokenRepository
	tokens  TokenIssuer
	mailer  usecase.Mailer
	cfg     Config
	now     func() time.Time
	logger  *zap.Logger
}

func New(
	users repository.UserRepository,
	reviews repository.ReviewRepository,
	resets repository.ResetTokenRepository,
	tokens TokenIssuer,
	mailer usecase.Mailer,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.ResetTokenTTL <= 0 {
		cfg.ResetTokenTTL = 10 * time.Minute
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = domain.CurrencyPLN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:   users,
		reviews: reviews,
		resets:  resets,
		tokens:  tokens,
		mailer:  mailer,
		cfg:     cfg,
		now:     time.Now,
		logger:  logger,
	}
}

// Register creates an active user and returns a session token for it.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (string, error) {
	currency := in.DefaultCurrency
	if currency == "" {
		currency = uc.cfg.DefaultCurrency
	}
	if !currency.Valid() {
		return "", domain.NewError(domain.ErrCodeInvalid, "unsupported currency "+string(currency))
	}
	roles := in.Roles
	if len(roles) == 0 {
		roles = []domain.Role{domain.RoleUser}
	}

	hash, err := uc.hash(in.Password)
	if err != nil {
		return "", err
	}

	u := &domain.User{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Login:           in.Login,
		Email:           strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:    hash,
		Roles:           roles,
		Addresses:       in.Addresses,
		DefaultCurrency: currency,
		Active:          true,
	}
	if err := uc.users.Create(ctx, u); err != nil {
		return "", err
	}
	uc.logger.Info("user registered", zap.String("user_id", u.ID))
	return uc.issue(u.ID)
}

// Login checks credentials of an active user and returns a session token.
func (uc *UseCase) Login(ctx context.Context, email, password string) (string, error) {
	u, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", domain.ErrInvalidCredentials
		}
		return "", err
	}
	if !checkPassword(u.PasswordHash, password) {
		uc.requestLogger(ctx).Info("login rejected", zap.String("user_id", u.ID))
		return "", domain.ErrInvalidCredentials
	}
	return uc.issue(u.ID)
}

func (uc *UseCase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return uc.users.GetByID(ctx, id)
}

// UpdateUser applies patch to the user's profile. Password and roles are not patchable.
func (uc *UseCase) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	if patch.Empty() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "no updatable fields provided")
	}
	if patch.DefaultCurrency != nil && !patch.DefaultCurrency.Valid() {
		return nil, domain.NewError(domain.ErrCodeInvalid, "unsupported currency "+string(*patch.DefaultCurrency))
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		patch.Email = &email
	}
	return uc.users.Update(ctx, id, patch)
}

// DeactivateUser clears the active flag of the calling user.
func (uc *UseCase) DeactivateUser(ctx context.Context, id string) error {
	if err := uc.users.SetActive(ctx, id, false); err != nil {
		return err
	}
	uc.requestLogger(ctx).Info("user deactivated", zap.String("user_id", id))
	return nil
}

// DeleteUser is the administrative removal of a user. Records are kept and only deactivated.
func (uc *UseCase) DeleteUser(ctx context.Context, id string) error {
	if _, err := uc.users.GetByID(ctx, id); err != nil {
		return err
	}
	if err := uc.users.SetActive(ctx, id, false); err != nil {
		return err
	}
	uc.requestLogger(ctx).Info("user deleted by administrator", zap.String("user_id", id))
	return nil
}

// ForgotPassword stores a one-time reset token and mails resetURL/{token} to the user.
func (uc *UseCase) ForgotPassword(ctx context.Context, resetURL, email string) error {
	u, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return domain.NewError(domain.ErrCodeNotFound, "there is no user with this email address")
		}
		return err
	}

	token, digest, err := newResetToken()
	if err != nil {
		return domain.WrapError(domain.ErrCodeInternal, "failed to generate reset token", err)
	}
	if err := uc.resets.Save(ctx, digest, u.ID, uc.cfg.ResetTokenTTL); err != nil {
		return err
	}

	url := strings.TrimRight(resetURL, "/") + "/" + token
	if err := uc.mailer.SendPasswordReset(ctx, u.Email, url); err != nil {
		if delErr := uc.resets.Delete(ctx, digest); delErr != nil {
			uc.logger.Warn("failed to discard reset token", zap.Error(delErr))
		}
		return domain.WrapError(domain.ErrCodeInternal, "there was an error sending the email, try again later", err)
	}
	return nil
}

// ResetPassword exchanges a reset token for a new password and a fresh session token.
func (uc *UseCase) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	if token == "" {
		return "", domain.ErrResetTokenInvalid
	}
	userID, err := uc.resets.Consume(ctx, digestOf(token))
	if err != nil {
		return "", err
	}
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return "", domain.ErrResetTokenInvalid
		}
		return "", err
	}
	if !u.IsActive() {
		return "", domain.ErrResetTokenInvalid
	}
	if err := uc.setPassword(ctx, u.ID, newPassword); err != nil {
		return "", err
	}
	return uc.issue(u.ID)
}

// UpdatePassword changes the password after checking the current one.
func (uc *UseCase) UpdatePassword(ctx context.Context, id, currentPassword, newPassword string) (string, error) {
	u, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if !checkPassword(u.PasswordHash, currentPassword) {
		return "", domain.ErrWrongPassword
	}
	if err := uc.setPassword(ctx, u.ID, newPassword); err != nil {
		return "", err
	}
	return uc.issue(u.ID)
}

// GetUserReviews lists a page of the reviews written by userID.
func (uc *UseCase) GetUserReviews(ctx context.Context, userID string, filter domain.Filter, fields []string, page domain.Pagination) ([]domain.Review, error) {
	if userID == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "user id is required")
	}
	return uc.reviews.ListByUser(ctx, repository.ReviewQuery{
		UserID:     userID,
		Filter:     filter,
		Fields:     fields,
		Pagination: page,
	})
}

func (uc *UseCase) setPassword(ctx context.Context, id, password string) error {
	hash, err := uc.hash(password)
	if err != nil {
		return err
	}
	// Back-dated one second so a token issued right after still postdates the change.
	return uc.users.SetPassword(ctx, id, hash, uc.now().Add(-time.Second))
}

func (uc *UseCase) hash(password string) (string, error) {
	if password == "" {
		return "", domain.NewError(domain.ErrCodeInvalid, "password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", domain.WrapError(domain.ErrCodeInvalid, "password is too long", err)
		}
		return "", domain.WrapError(domain.ErrCodeInternal, "failed to hash password", err)
	}
	return string(hash), nil
}

func (uc *UseCase) issue(userID string) (string, error) {
	token, err := uc.tokens.Create(userID)
	if err != nil {
		return "", domain.WrapError(domain.ErrCodeInternal, "failed to issue token", err)
	}
	return token, nil
}

func (uc *UseCase) requestLogger(ctx context.Context) *zap.Logger {
	log := appLogger.WithRequestID(ctx, uc.logger)
	if addr := httpcontext.RemoteAddr(ctx); addr != "" {
		log = log.With(zap.String("remote_addr", addr))
	}
	return log
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func newResetToken() (token, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	token = hex.EncodeToString(buf)
	return token, digestOf(token), nil
}

func digestOf(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
