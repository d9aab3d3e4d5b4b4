package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Account represents a registered user of the Cliptide platform.
//
// RefreshToken mirrors the refresh_token column: it holds the most recently
// issued refresh token for the account, or the empty string when the column is
// NULL. The authoritative NULL/value distinction lives in the database and is
// surfaced through the repository's GetRefreshToken.
type Account struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	PasswordHash  string
	AvatarURL     string
	CoverImageURL string
	RefreshToken  string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SetPassword hashes the plaintext password and stores the hash on the account.
func (a *Account) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashed)
	return nil
}

// VerifyPassword reports whether the plaintext password matches the stored hash.
func (a Account) VerifyPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plain)) == nil
}

// Profile is the outward-facing account projection. It never carries the
// password hash or the stored refresh token.
type Profile struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Sanitized returns the account stripped of credential material.
func (a Account) Sanitized() Profile {
	return Profile{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
	}
}

// TokenPair groups the bearer credentials issued to an authenticated account.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
