package helpers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pacomprar/internal/auctionerrors"
	"pacomprar/internal/authz"
	"pacomprar/utils"
)

// CallerContextKey is where the auth middleware stores the resolved caller.
const CallerContextKey = "caller"

// CallerFrom returns the caller set by the auth middleware; the zero value
// is an anonymous caller.
func CallerFrom(c *gin.Context) authz.Caller {
	if v, ok := c.Get(CallerContextKey); ok {
		if caller, ok := v.(authz.Caller); ok {
			return caller
		}
	}
	return authz.Caller{}
}

// ParseID reads a numeric path parameter. A non-numeric value means the URL
// does not name an existing resource, so the response is a plain 404.
func ParseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		utils.JSONError(c, http.StatusNotFound, "detail", "not found")
		return 0, false
	}
	return uint(id), true
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	utils.JSONError(c, http.StatusBadRequest, "detail", "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to an HTTP status plus the error
// body's field key and message.
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "detail", "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "detail", "bid not found"
	case errors.Is(err, auctionerrors.ErrRatingNotFound):
		return http.StatusNotFound, "detail", "rating not found"
	case errors.Is(err, auctionerrors.ErrCommentNotFound):
		return http.StatusNotFound, "detail", "comment not found"
	case errors.Is(err, auctionerrors.ErrCategoryNotFound):
		return http.StatusNotFound, "categoria", "category not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, "detail", "user not found"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusBadRequest, "subasta", "auction is closed"
	case errors.Is(err, auctionerrors.ErrNonPositiveAmount):
		return http.StatusBadRequest, "cantidad", "bid amount must be a positive number"
	case errors.Is(err, auctionerrors.ErrBelowStartingPrice):
		return http.StatusBadRequest, "cantidad", "bid must exceed the starting price"
	case errors.Is(err, auctionerrors.ErrBelowCurrentHigh):
		return http.StatusBadRequest, "cantidad", "bid must exceed the current highest bid"
	case errors.Is(err, auctionerrors.ErrDuplicateRating):
		return http.StatusBadRequest, "valoracion", "auction already rated by this user"
	case errors.Is(err, auctionerrors.ErrInvalidRating):
		return http.StatusBadRequest, "valoracion", "rating must be between 1 and 5"
	case errors.Is(err, auctionerrors.ErrCloseTooSoon):
		return http.StatusBadRequest, "fecha_cierre", "close time must be at least 15 days after creation"
	case errors.Is(err, auctionerrors.ErrSearchTooShort):
		return http.StatusBadRequest, "search", "search term must be at least 3 characters"
	case errors.Is(err, auctionerrors.ErrInvalidNumber):
		return http.StatusBadRequest, "detail", "filter must be a positive number"
	case errors.Is(err, auctionerrors.ErrInvalidRange):
		return http.StatusBadRequest, "precio", "precio_min cannot exceed precio_max"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, "detail", "invalid input"
	case errors.Is(err, auctionerrors.ErrUsernameTaken):
		return http.StatusBadRequest, "username", "username already in use"
	case errors.Is(err, auctionerrors.ErrEmailTaken):
		return http.StatusBadRequest, "email", "email already in use"
	case errors.Is(err, auctionerrors.ErrWeakPassword):
		return http.StatusBadRequest, "password", "password must be at least 8 characters and mix letters and digits"
	case errors.Is(err, auctionerrors.ErrPasswordMismatch):
		return http.StatusBadRequest, "password2", "passwords do not match"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, "detail", "invalid credentials"
	case errors.Is(err, auctionerrors.ErrTokenRevoked):
		return http.StatusUnauthorized, "detail", "token has been revoked"
	case errors.Is(err, auctionerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, "detail", "authentication required"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "detail", "permission denied"
	default:
		return http.StatusInternalServerError, "detail", "internal server error"
	}
}

// RespondError maps the error, writes the JSON body and logs the failure.
func RespondError(c *gin.Context, handlerName string, err error) {
	status, field, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, field, message)
	utils.Warn(handlerName+": "+message, map[string]any{"error": err.Error()})
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
