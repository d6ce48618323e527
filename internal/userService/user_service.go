package user

import (
	"fmt"
	"time"
	"unicode"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/identity"
	"pacomprar/internal/models"
	"pacomprar/internal/repository"
)

// Service implements account management: registration, credential checks,
// token lifecycle, profile edits and the admin user area.
type Service struct {
	repo    repository.AuctionDB
	issuer  *identity.TokenIssuer
	revoker identity.TokenRevoker
	now     func() time.Time
}

// NewService creates a Service backed by the given store, token issuer and
// revocation list.
func NewService(repo repository.AuctionDB, issuer *identity.TokenIssuer, revoker identity.TokenRevoker) *Service {
	return &Service{
		repo:    repo,
		issuer:  issuer,
		revoker: revoker,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// validatePassword enforces the password policy: at least 8 characters with
// at least one letter and one digit.
func validatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("service: %w - too short", auctionerrors.ErrWeakPassword)
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("service: %w - needs letters and digits", auctionerrors.ErrWeakPassword)
	}
	return nil
}

// RegisterInput carries the fields a new account is created from.
type RegisterInput struct {
	Username     string
	Email        string
	Password     string
	Password2    string
	FirstName    string
	LastName     string
	BirthDate    time.Time
	Locality     string
	Municipality string
}

// Register creates a new account after validating credentials and the
// password policy.
func (s *Service) Register(in RegisterInput) (models.User, error) {
	if in.Username == "" || in.Email == "" {
		return models.User{}, fmt.Errorf("service: %w - missing username or email", auctionerrors.ErrInvalidInput)
	}
	if in.Password != in.Password2 {
		return models.User{}, fmt.Errorf("service: %w", auctionerrors.ErrPasswordMismatch)
	}
	if err := validatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := identity.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("service: hash password: %w", err)
	}
	u := models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		BirthDate:    in.BirthDate,
		Locality:     in.Locality,
		Municipality: in.Municipality,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateUser(&u); err != nil {
		return models.User{}, fmt.Errorf("service: register user: %w", err)
	}
	return u, nil
}

// Login checks the credentials and returns a fresh access/refresh pair.
func (s *Service) Login(username, password string) (access, refresh string, u models.User, err error) {
	u, err = s.repo.GetUserByUsername(username)
	if err != nil {
		// Same error for unknown user and wrong password.
		return "", "", models.User{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
	}
	if !identity.CheckPassword(password, u.PasswordHash) {
		return "", "", models.User{}, fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
	}
	access, refresh, err = s.issuer.IssuePair(u)
	if err != nil {
		return "", "", models.User{}, fmt.Errorf("service: login user %q: %w", username, err)
	}
	return access, refresh, u, nil
}

// Refresh rotates a refresh token: the presented token's JTI is revoked for
// the remainder of its lifetime and a fresh pair is issued from the user's
// current record.
func (s *Service) Refresh(refreshToken string) (access, refresh string, err error) {
	claims, err := s.verifyRefresh(refreshToken)
	if err != nil {
		return "", "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		return "", "", fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	u, err := s.repo.GetUserByID(userID)
	if err != nil {
		return "", "", fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	s.revokeClaims(claims)
	access, refresh, err = s.issuer.IssuePair(u)
	if err != nil {
		return "", "", fmt.Errorf("service: refresh tokens for user %d: %w", userID, err)
	}
	return access, refresh, nil
}

// Logout revokes the presented refresh token until its natural expiry.
func (s *Service) Logout(refreshToken string) error {
	claims, err := s.verifyRefresh(refreshToken)
	if err != nil {
		return err
	}
	s.revokeClaims(claims)
	return nil
}

func (s *Service) verifyRefresh(refreshToken string) (identity.Claims, error) {
	claims, err := s.issuer.Verify(refreshToken, identity.TokenTypeRefresh)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	revoked, err := s.revoker.IsRevoked(claims.ID)
	if err != nil {
		return identity.Claims{}, fmt.Errorf("service: check revocation: %w", err)
	}
	if revoked {
		return identity.Claims{}, fmt.Errorf("service: %w", auctionerrors.ErrTokenRevoked)
	}
	return claims, nil
}

func (s *Service) revokeClaims(claims identity.Claims) {
	if claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := claims.ExpiresAt.Sub(s.now())
	if err := s.revoker.Revoke(claims.ID, ttl); err != nil {
		// Revocation is best effort; the token still expires on schedule.
		return
	}
}

// Profile returns the caller's own account.
func (s *Service) Profile(caller authz.Caller) (models.User, error) {
	if !caller.Authenticated {
		return models.User{}, fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	u, err := s.repo.GetUserByID(caller.ID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: get profile for user %d: %w", caller.ID, err)
	}
	return u, nil
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil pointers leave the current value untouched.
type ProfileUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	BirthDate    *time.Time
	Locality     *string
	Municipality *string
}

// UpdateProfile applies a partial update to the caller's own account.
func (s *Service) UpdateProfile(caller authz.Caller, in ProfileUpdate) (models.User, error) {
	u, err := s.Profile(caller)
	if err != nil {
		return models.User{}, err
	}
	if in.Email != nil {
		if *in.Email == "" {
			return models.User{}, fmt.Errorf("service: %w - empty email", auctionerrors.ErrInvalidInput)
		}
		u.Email = *in.Email
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.BirthDate != nil {
		u.BirthDate = *in.BirthDate
	}
	if in.Locality != nil {
		u.Locality = *in.Locality
	}
	if in.Municipality != nil {
		u.Municipality = *in.Municipality
	}
	if err := s.repo.UpdateUser(&u); err != nil {
		return models.User{}, fmt.Errorf("service: update profile for user %d: %w", caller.ID, err)
	}
	return u, nil
}

// DeleteProfile removes the caller's own account and, through the store,
// everything it owns.
func (s *Service) DeleteProfile(caller authz.Caller) error {
	if !caller.Authenticated {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if err := s.repo.DeleteUser(caller.ID); err != nil {
		return fmt.Errorf("service: delete user %d: %w", caller.ID, err)
	}
	return nil
}

// ChangePassword verifies the current password, checks the policy and stores
// a new hash.
func (s *Service) ChangePassword(caller authz.Caller, oldPassword, newPassword string) error {
	u, err := s.Profile(caller)
	if err != nil {
		return err
	}
	if !identity.CheckPassword(oldPassword, u.PasswordHash) {
		return fmt.Errorf("service: %w", auctionerrors.ErrInvalidCredentials)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := identity.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("service: hash password: %w", err)
	}
	u.PasswordHash = hash
	if err := s.repo.UpdateUser(&u); err != nil {
		return fmt.Errorf("service: change password for user %d: %w", caller.ID, err)
	}
	return nil
}

func requireAdmin(caller authz.Caller) error {
	if !caller.Authenticated {
		return fmt.Errorf("service: %w", auctionerrors.ErrUnauthenticated)
	}
	if !authz.AdminOnly.CanRead(caller, authz.Resource{}) {
		return fmt.Errorf("service: %w", auctionerrors.ErrForbidden)
	}
	return nil
}

// ListUsers returns every account. Admin only.
func (s *Service) ListUsers(caller authz.Caller) ([]models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	users, err := s.repo.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("service: list users: %w", err)
	}
	return users, nil
}

// GetUser fetches one account by id. Admin only.
func (s *Service) GetUser(caller authz.Caller, id uint) (models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return models.User{}, err
	}
	u, err := s.repo.GetUserByID(id)
	if err != nil {
		return models.User{}, fmt.Errorf("service: get user %d: %w", id, err)
	}
	return u, nil
}

// UpdateUser applies a partial update to any account. Admin only.
func (s *Service) UpdateUser(caller authz.Caller, id uint, in ProfileUpdate) (models.User, error) {
	if err := requireAdmin(caller); err != nil {
		return models.User{}, err
	}
	return s.UpdateProfile(authz.Caller{ID: id, Authenticated: true}, in)
}

// DeleteUser removes any account. Admin only.
func (s *Service) DeleteUser(caller authz.Caller, id uint) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}
	if err := s.repo.DeleteUser(id); err != nil {
		return fmt.Errorf("service: delete user %d: %w", id, err)
	}
	return nil
}
