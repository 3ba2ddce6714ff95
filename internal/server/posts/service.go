// Package posts implements post creation for authenticated users.
package posts

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new post owned by userID. The owner comes from the
// verified token, never from the request body.
func (s *Service) Create(ctx context.Context, userID, title, body string) (*Post, error) {

	post := &Post{
		UserID: userID,
		Title:  title,
		Body:   body,
	}

	post, err := s.repo.Create(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	return post, nil
}
