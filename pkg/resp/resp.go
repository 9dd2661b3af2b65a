package resp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
)

type FieldDetail struct {
	Path string `json:"path"`
	Info string `json:"info"`
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "data": data})
}
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"ok": true, "data": data})
}
func BadRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": msg})
}
func Unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": msg})
}
func Forbidden(c *gin.Context, msg string) {
	c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": msg})
}
func NotFound(c *gin.Context, msg string) {
	c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": msg})
}
func Conflict(c *gin.Context, msg string) {
	c.JSON(http.StatusConflict, gin.H{"ok": false, "error": msg})
}

// ServerError hides the cause; callers log it.
func ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
}

// BadRequestWithValidation unpacks binding errors into per-field details.
func BadRequestWithValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make([]FieldDetail, 0, len(verrs))
		for _, fe := range verrs {
			details = append(details, FieldDetail{Path: fe.Field(), Info: fieldMessage(fe)})
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "validation failed", "details": details})
		return
	}
	BadRequest(c, err.Error())
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param()
	case "max":
		return fe.Field() + " must be at most " + fe.Param()
	case "oneof":
		return fe.Field() + " must be one of " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}

// Error maps service errors onto the envelope.
func Error(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation),
		errors.Is(err, apperr.ErrEmptyMessage),
		errors.Is(err, apperr.ErrInvalidRating),
		errors.Is(err, apperr.ErrEmptyCart),
		errors.Is(err, apperr.ErrOwnProduct):
		BadRequest(c, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized), errors.Is(err, apperr.ErrSuspended):
		Unauthorized(c, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		NotFound(c, "not found")
	case errors.Is(err, apperr.ErrProductUnavailable):
		var ue *apperr.UnavailableError
		if errors.As(err, &ue) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error(), "products": ue.Products})
			return
		}
		Conflict(c, err.Error())
	case errors.Is(err, apperr.ErrInvalidTransition),
		errors.Is(err, apperr.ErrAlreadyRated),
		errors.Is(err, apperr.ErrAlreadyInCart),
		errors.Is(err, apperr.ErrEmailTaken),
		errors.Is(err, apperr.ErrOrderNotDelivered),
		errors.Is(err, apperr.ErrChatClosed),
		errors.Is(err, apperr.ErrConflict):
		Conflict(c, err.Error())
	default:
		ServerError(c, err)
	}
}
