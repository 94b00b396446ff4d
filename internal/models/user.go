package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID  `json:"id"`
	Email             string     `json:"email"`
	Username          string     `json:"username"`
	PasswordHash      string     `json:"-"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Bio               string     `json:"bio"`
	Location          string     `json:"location"`
	ProfilePictureURL *string    `json:"profile_picture_url"`
	CoverPhotoURL     *string    `json:"cover_photo_url"`
	IsPrivate         bool       `json:"is_private"`
	EmailVerified     bool       `json:"is_email_verified"`
	EmailVerifiedAt   *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FullName joins first and last name, falling back to the username.
func (u *User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// Summary projects the user into the compact form embedded in lists.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:                u.ID,
		Username:          u.Username,
		FullName:          u.FullName(),
		ProfilePictureURL: u.ProfilePictureURL,
	}
}

type CreateUserParams struct {
	Email         string
	Username      string
	PasswordHash  string
	FirstName     string
	LastName      string
	EmailVerified bool
}

// UpdateProfileParams carries optional profile edits; nil fields are left unchanged.
type UpdateProfileParams struct {
	Username          *string
	FirstName         *string
	LastName          *string
	Bio               *string
	Location          *string
	IsPrivate         *bool
	ProfilePictureURL *string
	CoverPhotoURL     *string
}

// UserSummary is the profile projection used inside relationship lists, posts and stories.
type UserSummary struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"full_name"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
}

// Profile is a user rendered for a particular viewer.
type Profile struct {
	*User
	FullName       string `json:"full_name"`
	FollowersCount int    `json:"followers_count"`
	FollowingCount int    `json:"following_count"`
	RelationshipFlags
}

type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	TokenHash string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}
