package errors

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-hierarchy-api/internal/services"
)

// RespondServiceError writes the response matching the kind of a service error.
func RespondServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		NotFound(c, err.Error())
	case services.KindUnauthorized:
		Forbidden(c, err.Error())
	case services.KindNotAssignable:
		UnprocessableEntity(c, ErrCodeNotAssignable, err.Error())
	case services.KindNotDeletable:
		ConflictWithCode(c, ErrCodeNotDeletable, err.Error())
	case services.KindInvalidStatus:
		BadRequestWithCode(c, ErrCodeInvalidStatus, err.Error())
	case services.KindInvalidInput:
		BadRequest(c, err.Error())
	case services.KindConflict:
		ConflictWithCode(c, ErrCodeAlreadyExists, err.Error())
	case services.KindUnavailable:
		ServiceUnavailable(c, err.Error())
	case services.KindUnauthenticated:
		RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeInvalidCredentials, err.Error()))
	default:
		log.Printf("request %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		InternalError(c, "")
	}
}
