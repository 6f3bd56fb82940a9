// Package users manages user profiles and exposes the batched, projected
// lookup other resources use to embed creator information.
package users

import "time"

// UserProfileResponse represents the data returned for a user profile.
// @Description User profile information
type UserProfileResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	// Bio is a pointer so an unset biography serializes as null.
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// UpdateUserProfileRequest represents a partial profile update. Pointer
// fields distinguish "not supplied" from "set to this value".
type UpdateUserProfileRequest struct {
	Email *string `json:"email,omitempty" validate:"omitempty,email"`
	Bio   *string `json:"bio,omitempty"`
}

// Profile is the projected view of a user handed out by Lookup. Only the
// requested fields are populated; ID is always present.
type Profile struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}
