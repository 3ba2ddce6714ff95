package posts

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/devlink/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *Post) (*Post, error) {

	query :=
		`INSERT INTO posts (user_id, title, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		post.UserID, post.Title, post.Body).Scan(&post.ID, &post.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}
