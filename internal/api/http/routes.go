package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weatherscope/internal/locations"
	"github.com/i474232898/weatherscope/internal/polling"
	"github.com/i474232898/weatherscope/internal/preferences"
	"github.com/i474232898/weatherscope/internal/session"
	"github.com/i474232898/weatherscope/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the session's event and snapshot endpoints into the
// Fiber app.
func RegisterRoutes(app *fiber.App, ctrl *session.Controller) {
	v1 := app.Group("/api/v1")

	v1.Get("/session", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.View())
	})

	// Search box events.
	v1.Post("/search/input", func(c *fiber.Ctx) error {
		var req inputRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(ctrl.Input(req.Text))
	})

	v1.Post("/search/focus", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Focus())
	})

	v1.Post("/search/select", func(c *fiber.Ctx) error {
		var req selectRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		search, err := ctrl.Select(req.ID)
		if err != nil {
			if errors.Is(err, session.ErrUnknownSuggestion) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return err
		}
		return c.JSON(search)
	})

	v1.Post("/search/blur", func(c *fiber.Ctx) error {
		if err := ctrl.Blur(session.RegionSearch); err != nil {
			return err
		}
		return c.JSON(ctrl.Search())
	})

	v1.Post("/query", func(c *fiber.Ctx) error {
		var req queryRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := ctrl.Submit(c.UserContext(), req.City)
		switch {
		case err == nil:
			return c.JSON(view)
		case errors.Is(err, weather.ErrEmptyQuery):
			return fiber.NewError(fiber.StatusBadRequest, "city is required")
		case errors.Is(err, session.ErrSuperseded):
			return c.Status(fiber.StatusConflict).JSON(view)
		case errors.Is(err, session.ErrClosed):
			return fiber.NewError(fiber.StatusGone, err.Error())
		default:
			return err
		}
	})

	// Preferences panel events.
	v1.Get("/preferences", func(c *fiber.Ctx) error {
		return c.JSON(ctrl.Preferences())
	})

	v1.Put("/preferences/units", func(c *fiber.Ctx) error {
		var req unitsRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		prefs, err := ctrl.SetUnits(c.UserContext(), preferences.Units(req.Units))
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(prefs)
	})

	v1.Put("/preferences/refresh-interval", func(c *fiber.Ctx) error {
		var req intervalRequest
		if err := bindAndValidate(c, &req); err != nil {
			return err
		}
		prefs, err := ctrl.SetRefreshInterval(c.UserContext(), req.Minutes)
		if err != nil {
			return preferenceError(err)
		}
		return c.JSON(prefs)
	})

	v1.Post("/preferences/toggle", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"open": ctrl.TogglePreferences()})
	})

	v1.Post("/preferences/blur", func(c *fiber.Ctx) error {
		if err := ctrl.Blur(session.RegionPreferences); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"open": false})
	})

	// Connection status indicator.
	v1.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(newStatusResponse(ctrl.Status(), time.Now()))
	})

	v1.Post("/status/alert/dismiss", func(c *fiber.Ctx) error {
		return c.JSON(newStatusResponse(ctrl.DismissAlert(), time.Now()))
	})

	// Monitored locations.
	v1.Get("/locations", func(c *fiber.Ctx) error {
		locs := ctrl.Locations()
		return c.JSON(locationsResponse{Locations: locs, Count: len(locs)})
	})

	v1.Delete("/locations/:id", func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location id")
		}
		if !ctrl.RemoveLocation(id) {
			return fiber.NewError(fiber.StatusNotFound, "unknown location")
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

type inputRequest struct {
	Text string `json:"text"`
}

type selectRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

type queryRequest struct {
	City string `json:"city"`
}

type unitsRequest struct {
	Units string `json:"units" validate:"required"`
}

type intervalRequest struct {
	Minutes int `json:"minutes" validate:"required"`
}

type statusResponse struct {
	polling.ConnectionState
	Label      string `json:"label"`
	LastUpdate string `json:"lastUpdate"`
}

func newStatusResponse(state polling.ConnectionState, now time.Time) statusResponse {
	return statusResponse{
		ConnectionState: state,
		Label:           state.Status.Label(),
		LastUpdate:      polling.FormatLastUpdate(now, state.LastUpdateAt),
	}
}

type locationsResponse struct {
	Locations []locations.Suggestion `json:"locations"`
	Count     int                    `json:"count"`
}

func bindAndValidate(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func preferenceError(err error) error {
	switch {
	case errors.Is(err, preferences.ErrInvalidPreferenceValue):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, session.ErrClosed):
		return fiber.NewError(fiber.StatusGone, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save preferences")
	}
}
