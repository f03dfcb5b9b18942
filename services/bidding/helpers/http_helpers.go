package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"grain-auction/internal/auctionerrors"
	"grain-auction/utils"

	"github.com/gin-gonic/gin"
)

// ActorKey is the gin context key holding the request's user id
const ActorKey = "actor_id"

// ActorID returns the request-scoped user id set by the identity middleware
func ActorID(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrGrainNotFound):
		return http.StatusNotFound, "grain not found"
	case errors.Is(err, auctionerrors.ErrInvalidBidFields):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, auctionerrors.ErrInvalidWindow):
		return http.StatusBadRequest, "invalid auction window"
	case errors.Is(err, auctionerrors.ErrInvalidQuantity):
		return http.StatusBadRequest, "invalid quantity"
	case errors.Is(err, auctionerrors.ErrInvalidPrice):
		return http.StatusBadRequest, "invalid starting price"
	case errors.Is(err, auctionerrors.ErrNotAccredited):
		return http.StatusForbidden, "accreditation not approved"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, "not enough permissions"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrAuctionNotActive):
		return http.StatusConflict, "auction is not active"
	case errors.Is(err, auctionerrors.ErrAuctionStillActive):
		return http.StatusConflict, "auction is still active"
	case errors.Is(err, auctionerrors.ErrAuctionAlreadyFinalized):
		return http.StatusConflict, "auction winner already selected"
	case errors.Is(err, auctionerrors.ErrBidNotInAuction):
		return http.StatusConflict, "bid does not belong to auction"
	case errors.Is(err, auctionerrors.ErrDependencyUnavailable):
		return http.StatusServiceUnavailable, "dependency unavailable"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error, including rejection context when the error carries it
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)

	var details map[string]any
	var rejection *auctionerrors.RejectionError
	if errors.As(err, &rejection) {
		details = rejection.Details()
	}
	utils.JSONErrorWithDetails(c, status, fmt.Errorf("%s: %w", message, err), message, details)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["status"] = status
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
