package iot

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes sensor ingestion and field queries.
type Handler struct {
	svc *Service
}

// NewHandler constructs an IoT handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Ingest accepts a reading from a device.
func (h *Handler) Ingest(c *fiber.Ctx) error {
	var in Input
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid request body")
	}
	reading, alerts, err := h.svc.Ingest(c.UserContext(), in)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"record_id": reading.ID,
		"status":    "received",
		"alerts":    alerts,
		"timestamp": reading.CreatedAt,
	})
}

// History lists a field's readings.
func (h *Handler) History(c *fiber.Ctx) error {
	readings, err := h.svc.History(c.UserContext(), c.Params("fieldId"), c.QueryInt("limit", DefaultHistoryLimit))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": readings, "count": len(readings)})
}

// Latest returns a field's newest reading.
func (h *Handler) Latest(c *fiber.Ctx) error {
	reading, err := h.svc.Latest(c.UserContext(), c.Params("fieldId"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(reading)
}

// Stats returns aggregates over a field's recent readings.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext(), c.Params("fieldId"))
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoData):
		return fiber.NewError(http.StatusNotFound, "No data found for this field")
	case errors.Is(err, ErrValidation):
		return fiber.NewError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), ErrValidation.Error()+": "))
	default:
		return err
	}
}
