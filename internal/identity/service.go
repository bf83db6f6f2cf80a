package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Service manages the account lifecycle: registration, credential checks and profile edits.
type Service struct {
	repo   Repository
	hasher *Hasher
	now    func() time.Time

	decoyOnce sync.Once
	decoy     string
	decoyErr  error
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher *Hasher) *Service {
	return &Service{repo: repo, hasher: hasher, now: time.Now}
}

// NormalizeEmail is the canonical form used for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register validates the input, hashes the password and stores a new user.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	reg.Email = NormalizeEmail(reg.Email)
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Phone = strings.TrimSpace(reg.Phone)
	if err := validateRegistration(reg); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	user := User{
		ID:           uuid.New().String(),
		Name:         reg.Name,
		Email:        reg.Email,
		PasswordHash: hash,
		Phone:        reg.Phone,
		FarmLocation: reg.FarmLocation,
		FarmSize:     reg.FarmSize,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate returns the user owning email when password matches. Unknown
// emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		// Spend the same bcrypt work so response time does not reveal registered emails.
		decoy, err := s.decoyHash()
		if err != nil {
			return User{}, err
		}
		s.hasher.Verify(password, decoy)
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// FindByID resolves a user id to its record.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile applies the non-nil fields of update to the user's profile.
func (s *Service) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return User{}, invalid("name is required")
		}
		user.Name = name
	}
	if update.Phone != nil {
		phone := strings.TrimSpace(*update.Phone)
		if phone == "" {
			return User{}, invalid("phone is required")
		}
		user.Phone = phone
	}
	if update.FarmLocation != nil {
		user.FarmLocation = update.FarmLocation
	}
	if update.FarmSize != nil {
		if *update.FarmSize < 0 {
			return User{}, invalid("farm_size must not be negative")
		}
		user.FarmSize = update.FarmSize
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Service) decoyHash() (string, error) {
	s.decoyOnce.Do(func() {
		s.decoy, s.decoyErr = s.hasher.Hash(uuid.NewString())
		if s.decoyErr != nil {
			s.decoyErr = fmt.Errorf("build decoy hash: %w", s.decoyErr)
		}
	})
	return s.decoy, s.decoyErr
}

func validateRegistration(reg Registration) error {
	if reg.Name == "" {
		return invalid("name is required")
	}
	if reg.Email == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(reg.Email)
	if err != nil || addr.Address != reg.Email {
		return invalid("email is not a valid address")
	}
	if reg.Password == "" {
		return invalid("password is required")
	}
	if len(reg.Password) > maxPasswordBytes {
		return invalid("password must be at most %d bytes", maxPasswordBytes)
	}
	if reg.Phone == "" {
		return invalid("phone is required")
	}
	if reg.FarmSize != nil && *reg.FarmSize < 0 {
		return invalid("farm_size must not be negative")
	}
	return nil
}
