package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rohnsht/PhoneNumber/internal/repository"
	"github.com/rohnsht/PhoneNumber/internal/service/phone"
)

type handlers struct {
	phone   *phone.Service
	jobs    JobQueue
	numbers repository.CHNumbersRepository
	log     *zap.Logger
}

type stringReq struct {
	String string `json:"string" validate:"required"`
	Region string `json:"region"`
}

type stringsReq struct {
	Strings []string `json:"strings" validate:"required,min=1"`
	Region  string   `json:"region"`
}

// bind decodes and validates a request body; failures are InvalidParameters.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return badRequest(c, "malformed body")
	}
	if err := c.Validate(req); err != nil {
		return badRequest(c, err.Error())
	}
	return nil
}

func (h *handlers) parse(c echo.Context) error {
	var req stringReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.phone.Parse(req.String, req.Region)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handlers) parseList(c echo.Context) error {
	var req stringsReq
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.phone.ParseList(req.Strings, req.Region)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *handlers) format(c echo.Context) error {
	var req stringReq
	if err := bind(c, &req); err != nil {
		return err
	}
	out, err := h.phone.Format(req.String, req.Region)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"formatted": out})
}

func (h *handlers) validate(c echo.Context) error {
	var req stringReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ok, err := h.phone.Validate(req.String, req.Region)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"isValid": ok})
}

func (h *handlers) regions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.phone.SupportedRegions(c.QueryParam("locale")))
}

func (h *handlers) carrierRegion(c echo.Context) error {
	code, err := h.phone.CarrierRegionCode(c.Request().Context())
	if err != nil {
		h.log.Warn("carrier region unavailable", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, errorBody{Error: "carrier region unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"region_code": code})
}
