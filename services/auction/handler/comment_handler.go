package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	auction "pacomprar/internal/auctionService"
	"pacomprar/internal/authz"
	"pacomprar/internal/models"
	"pacomprar/services/auction/helpers"
)

type CommentServiceInterface interface {
	CreateComment(caller authz.Caller, auctionID uint, in auction.CommentInput) (models.Comment, error)
	GetComment(auctionID, commentID uint) (models.Comment, error)
	ListComments(auctionID uint) ([]models.Comment, error)
	ListCommentsByUser(userID uint) ([]models.Comment, error)
	UpdateComment(caller authz.Caller, auctionID, commentID uint, in auction.CommentInput) (models.Comment, error)
	DeleteComment(caller authz.Caller, auctionID, commentID uint) error
}

type CommentHandler struct {
	service CommentServiceInterface
}

func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// CreateCommentHandler handles POST /api/subastas/:id_subasta/comentarios
func (h *CommentHandler) CreateCommentHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateCommentHandler", err)
		return
	}
	in := auction.CommentInput{Title: req.Title, Text: req.Text}
	comment, err := h.service.CreateComment(helpers.CallerFrom(c), auctionID, in)
	if err != nil {
		helpers.RespondError(c, "CreateCommentHandler", err)
		return
	}
	c.JSON(http.StatusCreated, comment)
	helpers.LogSuccess("CreateCommentHandler", "comment created successfully", map[string]any{
		"comment_id": comment.ID,
		"auction_id": comment.AuctionID,
	})
}

// ListCommentsHandler handles GET /api/subastas/:id_subasta/comentarios
func (h *CommentHandler) ListCommentsHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	comments, err := h.service.ListComments(auctionID)
	if err != nil {
		helpers.RespondError(c, "ListCommentsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(comments))
	helpers.LogSuccess("ListCommentsHandler", "comments retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(comments),
	})
}

// GetCommentHandler handles GET /api/subastas/:id_subasta/comentarios/:id_comentario
func (h *CommentHandler) GetCommentHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	commentID, ok := helpers.ParseID(c, "id_comentario")
	if !ok {
		return
	}
	comment, err := h.service.GetComment(auctionID, commentID)
	if err != nil {
		helpers.RespondError(c, "GetCommentHandler", err)
		return
	}
	c.JSON(http.StatusOK, comment)
	helpers.LogSuccess("GetCommentHandler", "comment retrieved successfully", map[string]any{"comment_id": comment.ID})
}

// UpdateCommentHandler handles PUT /api/subastas/:id_subasta/comentarios/:id_comentario
func (h *CommentHandler) UpdateCommentHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	commentID, ok := helpers.ParseID(c, "id_comentario")
	if !ok {
		return
	}
	var req helpers.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateCommentHandler", err)
		return
	}
	in := auction.CommentInput{Title: req.Title, Text: req.Text}
	comment, err := h.service.UpdateComment(helpers.CallerFrom(c), auctionID, commentID, in)
	if err != nil {
		helpers.RespondError(c, "UpdateCommentHandler", err)
		return
	}
	c.JSON(http.StatusOK, comment)
	helpers.LogSuccess("UpdateCommentHandler", "comment updated successfully", map[string]any{"comment_id": comment.ID})
}

// DeleteCommentHandler handles DELETE /api/subastas/:id_subasta/comentarios/:id_comentario
func (h *CommentHandler) DeleteCommentHandler(c *gin.Context) {
	auctionID, ok := helpers.ParseID(c, "id_subasta")
	if !ok {
		return
	}
	commentID, ok := helpers.ParseID(c, "id_comentario")
	if !ok {
		return
	}
	if err := h.service.DeleteComment(helpers.CallerFrom(c), auctionID, commentID); err != nil {
		helpers.RespondError(c, "DeleteCommentHandler", err)
		return
	}
	c.Status(http.StatusNoContent)
	helpers.LogSuccess("DeleteCommentHandler", "comment deleted successfully", map[string]any{"comment_id": commentID})
}

// MyCommentsHandler handles GET /api/misComentarios
func (h *CommentHandler) MyCommentsHandler(c *gin.Context) {
	caller := helpers.CallerFrom(c)
	comments, err := h.service.ListCommentsByUser(caller.ID)
	if err != nil {
		helpers.RespondError(c, "MyCommentsHandler", err)
		return
	}
	c.JSON(http.StatusOK, emptyIfNil(comments))
	helpers.LogSuccess("MyCommentsHandler", "comments retrieved successfully", map[string]any{
		"user_id": caller.ID,
		"count":   len(comments),
	})
}
