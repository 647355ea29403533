package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comeca-ai/leao-pet-vitality/internal/logging"
	"github.com/comeca-ai/leao-pet-vitality/internal/usecase"
)

// writeError maps the usecase error taxonomy onto HTTP responses. The body
// always tells the client whether retrying the same action can help, so no
// failure path leaves the user stuck.
func writeError(c *gin.Context, err error) {
	kind := usecase.KindOf(err)

	status := http.StatusInternalServerError
	switch kind {
	case usecase.KindValidation, usecase.KindStock:
		status = http.StatusUnprocessableEntity
	case usecase.KindAuth:
		status = http.StatusUnauthorized
	case usecase.KindNetwork, usecase.KindProcessor:
		status = http.StatusBadGateway
	}

	body := gin.H{
		"kind":      string(kind),
		"retryable": usecase.Retryable(err),
	}
	var ue *usecase.Error
	if errors.As(err, &ue) {
		body["message"] = ue.Msg
		if ue.Field != "" {
			body["field"] = ue.Field
		}
	} else {
		body["message"] = "something went wrong, please try again"
	}

	if kind == usecase.KindInternal {
		logging.From(c).Error("request failed", "err", err)
	}
	c.JSON(status, gin.H{"error": body})
}
