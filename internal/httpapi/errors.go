package httpapi

import (
	"errors"
	"net/http"

	"foodzz/internal/auth"
	"foodzz/internal/cart"
	"foodzz/internal/food"
	"foodzz/internal/logger"
	"foodzz/internal/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errBadID = errors.New("invalid id")

// statusFor maps domain errors to HTTP status codes. Unknown errors are
// internal and their message is not sent to the client.
func statusFor(err error) int {
	var ve *order.ValidationError
	switch {
	case errors.As(err, &ve),
		errors.Is(err, errBadID),
		errors.Is(err, food.ErrInvalidFood),
		errors.Is(err, food.ErrNoUpdate),
		errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPaymentMethod),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, food.ErrFoodNotFound),
		errors.Is(err, order.ErrOrderNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrInvalidTransition),
		errors.Is(err, order.ErrStaleStatus):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeErr(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.FromCtx(c.Request.Context()).Error("request failed",
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
