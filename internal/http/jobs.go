package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/rohnsht/PhoneNumber/internal/http/middleware"
	"github.com/rohnsht/PhoneNumber/internal/model"
	"github.com/rohnsht/PhoneNumber/internal/repository"
)

func (h *handlers) createJob(c echo.Context) error {
	clientID, ok := middleware.ClientIDFromCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	}
	var req stringsReq
	if err := bind(c, &req); err != nil {
		return err
	}

	id, err := h.jobs.Enqueue(c.Request().Context(), clientID, req.Strings, req.Region)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusAccepted, map[string]any{
		"id":     id,
		"status": model.JobQueued,
		"total":  len(req.Strings),
	})
}

func (h *handlers) getJob(c echo.Context) error {
	clientID, ok := middleware.ClientIDFromCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	}
	job, err := h.jobs.Get(c.Request().Context(), clientID, c.Param("id"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, job)
}

// listNumbers reports normalized numbers of the calling client from
// ClickHouse, newest first.
func (h *handlers) listNumbers(c echo.Context) error {
	clientID, ok := middleware.ClientIDFromCtx(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	}

	f := repository.NumbersFilter{
		JobID:  strings.TrimSpace(c.QueryParam("job_id")),
		Region: strings.ToUpper(strings.TrimSpace(c.QueryParam("region"))),
		Limit:  50,
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			f.Limit = n
		}
	}
	if v := c.QueryParam("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Offset = n
		}
	}
	if raw := strings.TrimSpace(c.QueryParam("type")); raw != "" {
		if t, ok := model.ParseNumberType(raw); ok {
			f.Type = t.String()
		}
	}
	if v := c.QueryParam("valid"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Valid = &b
		}
	}

	rows, err := h.numbers.ListByClient(c.Request().Context(), clientID, f)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"limit":   f.Limit,
		"offset":  f.Offset,
		"count":   len(rows),
		"numbers": rows,
	})
}
