package handler

import (
	"errors"
	"net/http"

	"tourops/internal/backup"
	"tourops/internal/model"
	"tourops/internal/repository"
	"tourops/internal/service"
	"tourops/pkg/response"

	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case repository.IsDuplicateName(err):
		return http.StatusConflict
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrInvalidInput), errors.Is(err, backup.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrBackupsDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError aborts the request with the envelope for err. Unexpected
// errors are attached to the context so the access log records them.
func writeError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(code, response.Error(code, err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, msg))
}

// listQuery reads the search and status filters. An unknown status is
// rejected rather than ignored.
func listQuery(c *gin.Context) (repository.ListQuery, bool) {
	q := repository.ListQuery{
		Search: c.Query("search"),
		Status: model.Status(c.Query("status")),
	}
	if q.Status != "" && q.Status != model.StatusAll && !q.Status.Valid() {
		badRequest(c, "status must be active, inactive or all")
		return q, false
	}
	return q, true
}
