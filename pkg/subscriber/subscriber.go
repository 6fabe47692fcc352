package subscriber

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/notifykit/pkg/notifications"
	"github.com/dmitrymomot/notifykit/pkg/subscription"
	"github.com/dmitrymomot/notifykit/pkg/validator"
)

// MaxActiveChannels caps how many channels a subscriber may have enabled at once.
const MaxActiveChannels = 5

const (
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt ignores anything longer
)

// RefreshToken is the state of the subscriber's current refresh token.
// Only a SHA-256 digest of the token is kept.
type RefreshToken struct {
	Hash      string    `json:"hash"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
}

// Subscriber is a tenant of the notification service.
// Channels is kept sorted and unique; change it through EnableChannel and
// DisableChannel only.
type Subscriber struct {
	ID           uuid.UUID               `json:"id"`
	CompanyName  string                  `json:"company_name"`
	Email        string                  `json:"email"`
	Phone        string                  `json:"phone,omitempty"`
	PasswordHash []byte                  `json:"-"`
	Channels     []notifications.Channel `json:"channels"`
	RefreshToken *RefreshToken           `json:"-"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

// Params holds registration input.
type Params struct {
	CompanyName string
	Email       string
	Phone       string
	Password    string
}

// Option configures subscriber construction.
type Option func(*options)

type options struct {
	bcryptCost int
	now        func() time.Time
}

// WithBcryptCost sets the bcrypt cost for password hashing.
func WithBcryptCost(cost int) Option {
	return func(o *options) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			o.bcryptCost = cost
		}
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New validates registration input and creates a subscriber with no active channels.
func New(p Params, opts ...Option) (*Subscriber, error) {
	o := options{bcryptCost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	p.CompanyName = strings.TrimSpace(p.CompanyName)
	p.Email = normalizeEmail(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)

	rules := []validator.Rule{
		validator.RequiredString("company_name", p.CompanyName),
		validator.MaxLenString("company_name", p.CompanyName, 200),
		validator.ValidEmail("email", p.Email),
		validator.MinLenString("password", p.Password, minPasswordLength),
		validator.MaxLenString("password", p.Password, maxPasswordLength),
	}
	if p.Phone != "" {
		rules = append(rules, validator.ValidPhone("phone", p.Phone))
	}
	if err := validator.Apply(rules...); err != nil {
		return nil, errors.Join(ErrInvalidSubscriber, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), o.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := o.now().UTC()
	return &Subscriber{
		ID:           uuid.New(),
		CompanyName:  p.CompanyName,
		Email:        p.Email,
		Phone:        p.Phone,
		PasswordHash: hash,
		Channels:     []notifications.Channel{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// EnableChannel activates ch under plan. Enabling an already active channel is a no-op.
func (s *Subscriber) EnableChannel(ch notifications.Channel, plan subscription.Plan, now time.Time) error {
	if !notifications.IsSupportedChannel(ch) {
		return notifications.ErrUnknownChannel
	}
	if s.HasChannel(ch) {
		return nil
	}
	if !plan.AllowsChannel(ch) {
		return fmt.Errorf("%w: %s on %s plan", ErrChannelNotAllowed, ch, plan.Tier)
	}
	if ch == notifications.ChannelSMS && s.Phone == "" {
		return ErrPhoneRequired
	}
	if len(s.Channels) >= MaxActiveChannels {
		return ErrTooManyChannels
	}

	s.Channels = append(s.Channels, ch)
	slices.SortFunc(s.Channels, notifications.CompareChannels)
	s.UpdatedAt = now.UTC()
	return nil
}

// DisableChannel deactivates ch. Disabling an inactive channel is a no-op.
func (s *Subscriber) DisableChannel(ch notifications.Channel, now time.Time) {
	i := slices.Index(s.Channels, ch)
	if i < 0 {
		return
	}
	s.Channels = slices.Delete(s.Channels, i, i+1)
	s.UpdatedAt = now.UTC()
}

// HasChannel reports whether ch is active.
func (s *Subscriber) HasChannel(ch notifications.Channel) bool {
	return slices.Contains(s.Channels, ch)
}

// ActiveChannels returns the active channels sorted by name.
func (s *Subscriber) ActiveChannels() []notifications.Channel {
	return slices.Clone(s.Channels)
}

// UpdateContact replaces email and phone. Clearing the phone while sms is
// active fails with ErrPhoneRequired.
func (s *Subscriber) UpdateContact(email, phone string, now time.Time) error {
	email = normalizeEmail(email)
	phone = strings.TrimSpace(phone)

	rules := []validator.Rule{validator.ValidEmail("email", email)}
	if phone != "" {
		rules = append(rules, validator.ValidPhone("phone", phone))
	}
	if err := validator.Apply(rules...); err != nil {
		return errors.Join(ErrInvalidSubscriber, err)
	}
	if phone == "" && s.HasChannel(notifications.ChannelSMS) {
		return ErrPhoneRequired
	}

	s.Email = email
	s.Phone = phone
	s.UpdatedAt = now.UTC()
	return nil
}

// CheckPassword reports whether plain matches the stored hash.
func (s *Subscriber) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword(s.PasswordHash, []byte(plain)) == nil
}

// ChangePassword replaces the password after verifying the old one. The new
// hash keeps the cost of the current one.
func (s *Subscriber) ChangePassword(oldPassword, newPassword string, now time.Time) error {
	if !s.CheckPassword(oldPassword) {
		return ErrInvalidCredentials
	}
	if err := validator.Apply(
		validator.MinLenString("password", newPassword, minPasswordLength),
		validator.MaxLenString("password", newPassword, maxPasswordLength),
	); err != nil {
		return errors.Join(ErrInvalidSubscriber, err)
	}

	cost, err := bcrypt.Cost(s.PasswordHash)
	if err != nil {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.PasswordHash = hash
	s.RefreshToken = nil
	s.UpdatedAt = now.UTC()
	return nil
}

// IssueRefreshToken replaces any existing refresh token and returns the new
// plaintext token. Only its digest is retained.
func (s *Subscriber) IssueRefreshToken(ttl time.Duration, now time.Time) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate refresh token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(b)

	s.RefreshToken = &RefreshToken{
		Hash:      hashToken(token),
		ExpiresAt: now.Add(ttl).UTC(),
	}
	s.UpdatedAt = now.UTC()
	return token, nil
}

// ValidateRefreshToken checks token against the current refresh token state.
func (s *Subscriber) ValidateRefreshToken(token string, now time.Time) error {
	rt := s.RefreshToken
	if rt == nil || token == "" {
		return ErrInvalidRefreshToken
	}
	if subtle.ConstantTimeCompare([]byte(rt.Hash), []byte(hashToken(token))) != 1 {
		return ErrInvalidRefreshToken
	}
	if rt.Revoked {
		return ErrRefreshTokenRevoked
	}
	if !now.Before(rt.ExpiresAt) {
		return ErrRefreshTokenExpired
	}
	return nil
}

// RevokeRefreshToken marks the current refresh token revoked.
func (s *Subscriber) RevokeRefreshToken(now time.Time) {
	if s.RefreshToken == nil || s.RefreshToken.Revoked {
		return
	}
	s.RefreshToken.Revoked = true
	s.UpdatedAt = now.UTC()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
