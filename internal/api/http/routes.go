package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/i474232898/weather-sync/internal/errors"
	"github.com/i474232898/weather-sync/internal/scheduler"
	"github.com/i474232898/weather-sync/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the engine's public operations into the Fiber app.
func RegisterRoutes(app *fiber.App, sched *scheduler.Scheduler) {
	v1 := app.Group("/api/v1/weather")

	v1.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(sched.State())
	})

	v1.Post("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		unit, err := weather.ParseUnit(req.Unit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := sched.SetUnit(c.UserContext(), unit); err != nil {
			return err
		}
		return c.JSON(sched.State())
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		if err := sched.RefreshNow(c.UserContext()); err != nil {
			return err
		}
		return c.JSON(sched.State())
	})

	v1.Post("/search", func(c *fiber.Ctx) error {
		var req searchRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		if err := sched.Search(c.UserContext(), req.Query); err != nil {
			return err
		}
		return c.JSON(sched.State())
	})

	v1.Post("/locate", func(c *fiber.Ctx) error {
		if err := sched.Locate(c.UserContext()); err != nil {
			return err
		}
		return c.JSON(sched.State())
	})

	v1.Put("/location", func(c *fiber.Ctx) error {
		var req locationRequest
		if err := bindJSON(c, &req); err != nil {
			return err
		}
		coords := weather.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon}
		if err := sched.SetLocation(c.UserContext(), coords, req.Name); err != nil {
			return err
		}
		return c.JSON(sched.State())
	})

	v1.Delete("/location", func(c *fiber.Ctx) error {
		sched.ClearLocation()
		return c.JSON(sched.State())
	})
}

// ErrorHandler renders errors as {"error": true, "code": ..., "message": ...}.
// Engine errors are mapped to a status by their code.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{
			"error":   true,
			"message": fe.Message,
		})
	}

	appCode := apperrors.GetCode(err)
	return c.Status(statusFor(appCode)).JSON(fiber.Map{
		"error":   true,
		"code":    appCode,
		"message": apperrors.MessageOf(err),
	})
}

type unitRequest struct {
	Unit string `json:"unit" validate:"required"`
}

type searchRequest struct {
	Query string `json:"query" validate:"required"`
}

type locationRequest struct {
	Lat  *float64 `json:"lat" validate:"required,latitude"`
	Lon  *float64 `json:"lon" validate:"required,longitude"`
	Name string   `json:"name" validate:"max=200"`
}

func bindJSON(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

// statusFor maps engine error codes to HTTP statuses.
func statusFor(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeInvalidInput:
		return fiber.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return fiber.StatusNotFound
	case apperrors.ErrCodePermissionDenied:
		return fiber.StatusForbidden
	case apperrors.ErrCodeNoCapability:
		return fiber.StatusNotImplemented
	case apperrors.ErrCodeNetwork:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
