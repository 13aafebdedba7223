package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
	"github.com/rohnsht/PhoneNumber/internal/service/queue"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: phone.ErrInvalidParameters.Error(), Message: msg})
}

// writeError maps service failures onto status codes. The two boundary
// errors keep their names in the body.
func (h *handlers) writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, phone.ErrInvalidParameters),
		errors.Is(err, queue.ErrEmptyJob),
		errors.Is(err, queue.ErrJobTooLarge):
		return badRequest(c, err.Error())
	case errors.Is(err, phone.ErrInvalidNumber):
		return c.JSON(http.StatusUnprocessableEntity, errorBody{Error: phone.ErrInvalidNumber.Error(), Message: err.Error()})
	case errors.Is(err, repository.ErrJobNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	}
	h.log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
}
