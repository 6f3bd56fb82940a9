package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/gamehub-go/apperror"
)

// projectable maps the field names accepted by Lookup to their columns.
// Anything not listed here (password above all) can never be projected out.
var projectable = map[string]string{
	"username": "username",
	"email":    "email",
}

// UserService provides user profile reads and updates.
type UserService struct {
	db *pgxpool.Pool
}

// NewUserService creates a new UserService.
func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

// Lookup fetches the requested projection of the given users in a single
// batched query and returns them keyed by id. Unknown ids are simply absent
// from the result; unknown field names are ignored.
func (s *UserService) Lookup(ctx context.Context, ids []int64, fields []string) (map[int64]*Profile, error) {
	result := make(map[int64]*Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	cols := []string{"userid"}
	selected := make([]string, 0, len(fields))
	for _, f := range fields {
		if col, ok := projectable[f]; ok {
			cols = append(cols, col)
			selected = append(selected, f)
		}
	}

	query := fmt.Sprintf("SELECT %s FROM users WHERE userid = ANY($1)", strings.Join(cols, ", "))
	rows, err := s.db.Query(ctx, query, ids)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to look up users", err)
	}
	defer rows.Close()

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan user row", err)
		}
		id, ok := vals[0].(int64)
		if !ok {
			return nil, apperror.NewDatabaseError("unexpected userid column type", nil)
		}
		p := &Profile{ID: id}
		for i, f := range selected {
			v, _ := vals[i+1].(string)
			switch f {
			case "username":
				p.Username = v
			case "email":
				p.Email = v
			}
		}
		result[id] = p
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate user rows", err)
	}
	return result, nil
}

// GetUserProfile retrieves a user's profile by id.
func (s *UserService) GetUserProfile(ctx context.Context, userID int64) (*UserProfileResponse, error) {
	query := `
		SELECT userid, username, email, bio, created_at
		FROM users
		WHERE userid = $1
	`
	var resp UserProfileResponse
	var bio sql.NullString

	err := s.db.QueryRow(ctx, query, userID).Scan(
		&resp.ID,
		&resp.Username,
		&resp.Email,
		&bio,
		&resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		return nil, apperror.NewDatabaseError("failed to get user profile", err)
	}
	if bio.Valid {
		resp.Bio = &bio.String
	}
	return &resp, nil
}

// UpdateUserProfile applies a partial update to a user's profile. Only
// supplied fields change.
func (s *UserService) UpdateUserProfile(ctx context.Context, userID int64, req *UpdateUserProfileRequest) (*UserProfileResponse, error) {
	var setClauses []string
	var args []interface{}
	argID := 1

	if req.Email != nil && *req.Email != "" {
		setClauses = append(setClauses, fmt.Sprintf("email = $%d", argID))
		args = append(args, strings.ToLower(*req.Email))
		argID++
	}
	if req.Bio != nil {
		setClauses = append(setClauses, fmt.Sprintf("bio = $%d", argID))
		args = append(args, *req.Bio)
		argID++
	}

	if len(setClauses) == 0 {
		return s.GetUserProfile(ctx, userID)
	}

	args = append(args, userID)
	query := fmt.Sprintf(`
		UPDATE users
		SET %s
		WHERE userid = $%d
		RETURNING userid, username, email, bio, created_at
	`, strings.Join(setClauses, ", "), argID)

	var resp UserProfileResponse
	var bio sql.NullString
	err := s.db.QueryRow(ctx, query, args...).Scan(
		&resp.ID,
		&resp.Username,
		&resp.Email,
		&bio,
		&resp.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("user with ID %d not found", userID), nil)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "email") {
			return nil, apperror.NewConflictError(fmt.Sprintf("email '%s' already exists", *req.Email), nil)
		}
		return nil, apperror.NewDatabaseError("failed to update user profile", err)
	}
	if bio.Valid {
		resp.Bio = &bio.String
	}
	return &resp, nil
}
