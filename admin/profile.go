package admin

import (
	"context"
	"net/http"

	"github.com/jonwraymond/fleetsync/api"
	"github.com/jonwraymond/fleetsync/query"
)

// Profile is the signed-in administrator.
type Profile struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"phone,omitempty"`
	Role   string `json:"role"`
	Avatar string `json:"avatar,omitempty"`
}

// UpdateProfileInput changes the administrator's details.
type UpdateProfileInput struct {
	Name   string `json:"name" validate:"required,min=2"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone,omitempty" validate:"omitempty,e164"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,url"`
}

// ChangePasswordInput changes the administrator's password.
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,nefield=CurrentPassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// ProfileService is the profile domain, a single document.
type ProfileService struct {
	api  *api.Client
	keys Keys
}

func newProfileService(c *api.Client) ProfileService {
	return ProfileService{api: c, keys: KeysFor(DomainProfile)}
}

// Spec reads the profile.
func (s ProfileService) Spec() query.Spec[Profile] {
	return query.Spec[Profile]{
		Key:   s.keys.All(),
		Name:  "get",
		Fetch: getData[Profile](s.api, "/profile", nil),
	}
}

// Get fetches or serves the profile.
func (s ProfileService) Get(ctx context.Context, q *query.Client) (Profile, error) {
	return query.Get(ctx, q, s.Spec())
}

// Update changes the profile.
func (s ProfileService) Update() query.Mutation[UpdateProfileInput, Profile] {
	return query.Mutation[UpdateProfileInput, Profile]{
		Domain: DomainProfile,
		Name:   "update",
		Call: sendCall[UpdateProfileInput, Profile](s.api, http.MethodPut, func(UpdateProfileInput) string {
			return "/profile"
		}),
		Invalidates: []query.Key{s.keys.All()},
		Success:     "Profile updated successfully",
		Failure:     "Failed to update profile",
		Validate:    true,
	}
}

// ChangePassword changes the password. Nothing cached depends on it.
func (s ProfileService) ChangePassword() query.Mutation[ChangePasswordInput, Ack] {
	return query.Mutation[ChangePasswordInput, Ack]{
		Domain: DomainProfile,
		Name:   "change_password",
		Call: func(ctx context.Context, in ChangePasswordInput) (Ack, error) {
			env, err := api.Send[struct{}](ctx, s.api, http.MethodPut, "/profile/password", in)
			return Ack{Message: env.Message}, err
		},
		Success:  "Password changed successfully",
		Failure:  "Failed to change password",
		Validate: true,
	}
}
