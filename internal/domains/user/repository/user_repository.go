package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"course-payments/internal/domains/user/model"
	"course-payments/pkg/cache"
	"course-payments/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userCacheTTL = 5 * time.Minute

// Repository is the read side of users needed by payments. Accounts are managed elsewhere.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) Repository {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// FindByID reads through the cache ("user:<id>").
func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	cacheKey := fmt.Sprintf("user:%s", id.String())

	var u model.User
	if r.cache != nil {
		if found, err := r.cache.Get(ctx, cacheKey, &u); err == nil && found {
			return &u, nil
		}
	}

	query := `
		SELECT id, email, full_name, role, is_active, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Role,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, cacheKey, u, userCacheTTL); err != nil {
			logger.Warn("failed to cache user", map[string]interface{}{
				"user_id": id.String(),
				"error":   err.Error(),
			})
		}
	}

	return &u, nil
}
