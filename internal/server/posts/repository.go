package posts

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, post *Post) (*Post, error)
}
