package games

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/user/gamehub-go/apperror"
)

// CreateGameRequest is the payload for creating a game.
// @Description New game data
type CreateGameRequest struct {
	Name        string   `json:"name" example:"Chess" validate:"required,min=1,max=200"`
	Description string   `json:"description" example:"The classic game of kings." validate:"required,min=1"`
	Tags        []string `json:"tags,omitempty" example:"board,strategy" validate:"omitempty,dive,min=1"`
}

// UpdateGameRequest is a partial patch: nil fields are left untouched, which
// makes an update a merge rather than a document replace. Supplied
// name/description must still be non-empty.
// @Description Partial game update
type UpdateGameRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `json:"description,omitempty" validate:"omitempty,min=1"`
	Tags        *[]string `json:"tags,omitempty" validate:"omitempty,dive,min=1"`
}

// ListGamesQuery carries the supported list filters and pagination.
type ListGamesQuery struct {
	// Tag filters to games whose tag list contains this value.
	Tag    string
	Limit  int
	Offset int
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateRequest runs struct validation, returning a ValidationError that
// enumerates every violation found rather than stopping at the first.
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+": failed on '"+fe.Tag()+"'")
		}
		return apperror.NewValidationError("invalid game payload", fields)
	}
	return apperror.NewBadRequestError("invalid game payload", err)
}
