package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hazemkhaled/digimarket/internal/models"
	"github.com/hazemkhaled/digimarket/pkg/crypto"
	pkgmail "github.com/hazemkhaled/digimarket/pkg/mail"
	"github.com/hazemkhaled/digimarket/pkg/metrics"
)

const (
	defaultResetExpiry      = time.Hour
	minResetPasswordLength  = 6
	resetEmailSubject       = "إعادة تعيين كلمة المرور - ديجيتال ماركت"
	resetEmailBodyTemplate  = `<div dir="rtl" style="font-family: Arial, sans-serif; line-height: 1.6;">
  <h2>إعادة تعيين كلمة المرور</h2>
  <p>لقد تلقينا طلبًا لإعادة تعيين كلمة المرور الخاصة بك.</p>
  <p>رمز إعادة التعيين الخاص بك هو:</p>
  <div style="background-color: #f4f4f4; padding: 15px; margin: 15px 0; text-align: center; border-radius: 5px;">
    <span style="font-size: 24px; font-weight: bold; letter-spacing: 5px;">%s</span>
  </div>
  <p>هذا الرمز صالح لمدة ساعة واحدة فقط.</p>
  <p>إذا لم تطلب إعادة تعيين كلمة المرور، يمكنك تجاهل هذا البريد الإلكتروني.</p>
  <div style="margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee;">
    <p style="color: #666;">مع أطيب التحيات،<br>فريق ديجيتال ماركت</p>
  </div>
</div>`
)

var (
	// ErrEmailRequired indicates the caller omitted the email address.
	ErrEmailRequired = errors.New("password reset: email is required")
	// ErrEmailInvalid indicates the email address is not well-formed.
	ErrEmailInvalid = errors.New("password reset: email is invalid")
	// ErrUnknownEmail signals that no account exists for the address. Callers
	// must not reveal this to clients; it exists for logging and metrics.
	ErrUnknownEmail = errors.New("password reset: unknown email")
	// ErrCodeRequired indicates the caller omitted the reset code.
	ErrCodeRequired = errors.New("password reset: code is required")
	// ErrPasswordRequired indicates a missing new password.
	ErrPasswordRequired = errors.New("password reset: new password is required")
	// ErrPasswordMismatch indicates the confirmation does not match the new password.
	ErrPasswordMismatch = errors.New("password reset: passwords do not match")
	// ErrPasswordTooShort indicates the new password is below the minimum length.
	ErrPasswordTooShort = errors.New("password reset: password must be at least 6 characters")
	// ErrCodeInvalid covers unknown, expired and already-used codes alike so a
	// caller cannot distinguish which it was.
	ErrCodeInvalid = errors.New("password reset: code is invalid or expired")
	// ErrCredentialUpdate signals the code was consumed but the password update
	// failed; the user must request a fresh code.
	ErrCredentialUpdate = errors.New("password reset: credential update failed")
)

// ResetOption customises the PasswordResetService.
type ResetOption func(*PasswordResetService)

// WithResetExpiry overrides the code lifetime.
func WithResetExpiry(d time.Duration) ResetOption {
	return func(s *PasswordResetService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithResetClock injects a custom time source.
func WithResetClock(clock func() time.Time) ResetOption {
	return func(s *PasswordResetService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// PasswordResetService issues, delivers and redeems single-use password reset codes.
type PasswordResetService struct {
	db     *gorm.DB
	mailer pkgmail.Mailer
	expiry time.Duration
	now    func() time.Time
}

// NewPasswordResetService constructs a reset service with the provided dependencies.
func NewPasswordResetService(db *gorm.DB, mailer pkgmail.Mailer, opts ...ResetOption) (*PasswordResetService, error) {
	if db == nil {
		return nil, errors.New("password reset service: db is required")
	}

	service := &PasswordResetService{
		db:     db,
		mailer: mailer,
		expiry: defaultResetExpiry,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// Request issues a fresh reset code for the address, superseding any earlier
// codes, and dispatches it by email. The code is returned for callers that
// deliver it through other channels; it is never stored in clear.
func (s *PasswordResetService) Request(ctx context.Context, email string) (string, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return "", err
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Count(&count).Error; err != nil {
		return "", fmt.Errorf("password reset service: look up account: %w", err)
	}
	if count == 0 {
		return "", ErrUnknownEmail
	}

	code, err := crypto.GenerateResetCode()
	if err != nil {
		return "", fmt.Errorf("password reset service: generate code: %w", err)
	}

	now := s.now()
	reset := models.PasswordResetCode{
		Email:     email,
		CodeHash:  resetCodeHash(code),
		ExpiresAt: now.Add(s.expiry),
	}

	// Only one code per address may be live; earlier codes are revoked here
	// rather than left to expire.
	if err := s.db.WithContext(ctx).
		Where("email = ?", email).
		Delete(&models.PasswordResetCode{}).Error; err != nil {
		return "", fmt.Errorf("password reset service: supersede existing codes: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&reset).Error; err != nil {
		return "", fmt.Errorf("password reset service: store code: %w", err)
	}

	metrics.PasswordResets.WithLabelValues("issued").Inc()

	if s.mailer != nil {
		message := pkgmail.Message{
			To:      []string{email},
			Subject: resetEmailSubject,
			Body:    fmt.Sprintf(resetEmailBodyTemplate, code),
			HTML:    true,
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, pkgmail.ErrSMTPDisabled) {
			return "", fmt.Errorf("password reset service: send email: %w", mailErr)
		}
	}

	return code, nil
}

// Confirm redeems a reset code and replaces the account password. The code row
// is claimed by a single conditional delete, so exactly one concurrent caller
// can succeed for a given code.
func (s *PasswordResetService) Confirm(ctx context.Context, email, code, newPassword, confirmPassword string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	code = strings.TrimSpace(code)
	if code == "" {
		return ErrCodeRequired
	}
	if newPassword == "" {
		return ErrPasswordRequired
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}
	if len(newPassword) < minResetPasswordLength {
		return ErrPasswordTooShort
	}

	now := s.now()

	result := s.db.WithContext(ctx).
		Where("email = ? AND code_hash = ? AND expires_at > ?", email, resetCodeHash(code), now).
		Delete(&models.PasswordResetCode{})
	if result.Error != nil {
		return fmt.Errorf("password reset service: claim code: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		metrics.PasswordResets.WithLabelValues("rejected").Inc()
		return ErrCodeInvalid
	}

	hashed, err := crypto.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: hash password: %v", ErrCredentialUpdate, err)
	}

	update := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("LOWER(email) = ?", email).
		Update("password", hashed)
	if update.Error != nil {
		return fmt.Errorf("%w: %v", ErrCredentialUpdate, update.Error)
	}
	if update.RowsAffected == 0 {
		return ErrCredentialUpdate
	}

	metrics.PasswordResets.WithLabelValues("claimed").Inc()

	return nil
}

// PurgeExpired removes reset codes whose validity window has passed.
func (s *PasswordResetService) PurgeExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&models.PasswordResetCode{})
	if result.Error != nil {
		return 0, fmt.Errorf("password reset service: purge expired: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", ErrEmailRequired
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", ErrEmailInvalid
	}
	return email, nil
}

func resetCodeHash(code string) string {
	digest := sha256.Sum256([]byte(code))
	return hex.EncodeToString(digest[:])
}
