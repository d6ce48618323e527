package auction

import (
	"fmt"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
)

// CommentInput carries the client-settable comment fields.
type CommentInput struct {
	Title string
	Text  string
}

func validateCommentInput(in CommentInput) error {
	if in.Title == "" || in.Text == "" {
		return fmt.Errorf("service: %w - missing title or text", auctionerrors.ErrInvalidInput)
	}
	return nil
}

// CreateComment attaches a comment by the caller to the auction.
func (s *Service) CreateComment(caller authz.Caller, auctionID uint, in CommentInput) (models.Comment, error) {
	if err := requireWrite(authz.AuthenticatedOrReadOnly, caller, authz.Resource{}); err != nil {
		return models.Comment{}, err
	}
	if _, err := s.GetAuction(auctionID); err != nil {
		return models.Comment{}, err
	}
	if err := validateCommentInput(in); err != nil {
		return models.Comment{}, err
	}
	cm := models.Comment{
		Title:     in.Title,
		Text:      in.Text,
		AuctionID: auctionID,
		UserID:    caller.ID,
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.repo.CreateComment(&cm); err != nil {
		return models.Comment{}, fmt.Errorf("service: create comment for auction %d: %w", auctionID, err)
	}
	return cm, nil
}

// GetComment fetches a single comment scoped to its auction.
func (s *Service) GetComment(auctionID, commentID uint) (models.Comment, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return models.Comment{}, err
	}
	cm, err := s.repo.GetCommentByID(auctionID, commentID)
	if err != nil {
		return models.Comment{}, fmt.Errorf("service: get comment %d for auction %d: %w", commentID, auctionID, err)
	}
	return cm, nil
}

// ListComments returns every comment on the auction.
func (s *Service) ListComments(auctionID uint) ([]models.Comment, error) {
	if _, err := s.GetAuction(auctionID); err != nil {
		return nil, err
	}
	comments, err := s.repo.ListCommentsByAuction(auctionID)
	if err != nil {
		return nil, fmt.Errorf("service: list comments for auction %d: %w", auctionID, err)
	}
	return comments, nil
}

// ListCommentsByUser returns every comment the user has written.
func (s *Service) ListCommentsByUser(userID uint) ([]models.Comment, error) {
	comments, err := s.repo.ListCommentsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("service: list comments for user %d: %w", userID, err)
	}
	return comments, nil
}

// UpdateComment replaces the title and text of an existing comment. Only the
// author or an admin may update.
func (s *Service) UpdateComment(caller authz.Caller, auctionID, commentID uint, in CommentInput) (models.Comment, error) {
	cm, err := s.GetComment(auctionID, commentID)
	if err != nil {
		return models.Comment{}, err
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Owned(cm.UserID)); err != nil {
		return models.Comment{}, err
	}
	if err := validateCommentInput(in); err != nil {
		return models.Comment{}, err
	}
	cm.Title = in.Title
	cm.Text = in.Text
	cm.UpdatedAt = s.now()
	if err := s.repo.UpdateComment(&cm); err != nil {
		return models.Comment{}, fmt.Errorf("service: update comment %d: %w", commentID, err)
	}
	return cm, nil
}

// DeleteComment removes a comment.
func (s *Service) DeleteComment(caller authz.Caller, auctionID, commentID uint) error {
	cm, err := s.GetComment(auctionID, commentID)
	if err != nil {
		return err
	}
	if err := requireWrite(authz.OwnerOrAdmin, caller, authz.Owned(cm.UserID)); err != nil {
		return err
	}
	if err := s.repo.DeleteComment(auctionID, commentID); err != nil {
		return fmt.Errorf("service: delete comment %d: %w", commentID, err)
	}
	return nil
}
