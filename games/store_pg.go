package games

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/gamehub-go/apperror"
)

// PGStore is the PostgreSQL-backed Store.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a PGStore on the given pool.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

const gameColumns = "gameid, slug, name, description, tags, creatorid, created_at, updated_at"

// whereClause builds the WHERE fragment and arguments for a filter.
// Returns an empty string when the filter is unconstrained.
func whereClause(f Filter, startArg int) (string, []interface{}) {
	var clauses []string
	var args []interface{}
	arg := startArg

	if f.ID != nil {
		clauses = append(clauses, fmt.Sprintf("gameid = $%d", arg))
		args = append(args, *f.ID)
		arg++
	}
	if f.Slug != nil {
		clauses = append(clauses, fmt.Sprintf("slug = $%d", arg))
		args = append(args, *f.Slug)
		arg++
	}
	if f.CreatorID != nil {
		clauses = append(clauses, fmt.Sprintf("creatorid = $%d", arg))
		args = append(args, *f.CreatorID)
		arg++
	}
	if f.Tag != nil {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(tags)", arg))
		args = append(args, *f.Tag)
		arg++
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanGame(row pgx.Row) (*Game, error) {
	var g Game
	err := row.Scan(&g.ID, &g.Slug, &g.Name, &g.Description, &g.Tags, &g.CreatorID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Insert stores a new game and returns it with its assigned id.
func (s *PGStore) Insert(ctx context.Context, g *Game) (*Game, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO games (slug, name, description, tags, creatorid, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+gameColumns,
		g.Slug, g.Name, g.Description, g.Tags, g.CreatorID, g.CreatedAt, g.UpdatedAt,
	)
	created, err := scanGame(row)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to insert game", err)
	}
	return created, nil
}

// FindOne returns the game matching the filter, or nil when absent.
func (s *PGStore) FindOne(ctx context.Context, f Filter) (*Game, error) {
	where, args := whereClause(f, 1)
	row := s.db.QueryRow(ctx, "SELECT "+gameColumns+" FROM games"+where+" LIMIT 1", args...)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to find game", err)
	}
	return g, nil
}

// Find returns the filtered page, newest first.
func (s *PGStore) Find(ctx context.Context, q Query) ([]*Game, error) {
	where, args := whereClause(q.Filter, 1)
	query := fmt.Sprintf(
		"SELECT %s FROM games%s ORDER BY created_at DESC, gameid DESC LIMIT $%d OFFSET $%d",
		gameColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, q.Limit, q.Offset)

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewDatabaseError("failed to list games", err)
	}
	defer rows.Close()

	result := []*Game{}
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, apperror.NewDatabaseError("failed to scan game row", err)
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewDatabaseError("failed to iterate game rows", err)
	}
	return result, nil
}

// Count returns the number of games matching the bare filter.
func (s *PGStore) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := whereClause(f, 1)
	var n int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM games"+where, args...).Scan(&n); err != nil {
		return 0, apperror.NewDatabaseError("failed to count games", err)
	}
	return n, nil
}

// UpdateByID applies a partial merge: only supplied patch fields reach the
// SET clause, so absent fields are untouched.
func (s *PGStore) UpdateByID(ctx context.Context, id int64, p Patch) (*Game, error) {
	setClauses := []string{}
	var args []interface{}
	arg := 1

	if p.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", arg))
		args = append(args, *p.Name)
		arg++
	}
	if p.Description != nil {
		setClauses = append(setClauses, fmt.Sprintf("description = $%d", arg))
		args = append(args, *p.Description)
		arg++
	}
	if p.Tags != nil {
		setClauses = append(setClauses, fmt.Sprintf("tags = $%d", arg))
		args = append(args, *p.Tags)
		arg++
	}
	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", arg))
	args = append(args, p.UpdatedAt)
	arg++

	args = append(args, id)
	query := fmt.Sprintf(
		"UPDATE games SET %s WHERE gameid = $%d RETURNING %s",
		strings.Join(setClauses, ", "), arg, gameColumns,
	)

	g, err := scanGame(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to update game", err)
	}
	return g, nil
}

// RemoveByID hard-deletes the game, returning the removed record.
func (s *PGStore) RemoveByID(ctx context.Context, id int64) (*Game, error) {
	row := s.db.QueryRow(ctx, "DELETE FROM games WHERE gameid = $1 RETURNING "+gameColumns, id)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, apperror.NewDatabaseError("failed to remove game", err)
	}
	return g, nil
}

var _ Store = (*PGStore)(nil)
