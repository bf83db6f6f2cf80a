package soil

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/middleware"
)

// Handler exposes soil report uploads.
type Handler struct {
	svc *Service
}

// NewHandler constructs a soil report handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Upload stores the multipart "file" field as a new report.
func (h *Handler) Upload(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "file could not be read")
	}
	defer f.Close()

	report, err := h.svc.Upload(c.UserContext(), user.ID, Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
	}, f)
	if err != nil {
		return httpError(err)
	}
	return c.Status(http.StatusCreated).JSON(report)
}

// List returns the caller's reports.
func (h *Handler) List(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	reports, err := h.svc.List(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"reports": reports, "count": len(reports)})
}

// Get returns one report with a download link.
func (h *Handler) Get(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Could not validate credentials")
	}
	report, url, err := h.svc.Get(c.UserContext(), user.ID, c.Params("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(fiber.Map{
		"report_id":    report.ID,
		"file_name":    report.FileName,
		"content_type": report.ContentType,
		"size_bytes":   report.SizeBytes,
		"created_at":   report.CreatedAt,
		"download_url": url,
	})
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(http.StatusNotFound, "Report not found")
	case errors.Is(err, ErrEmptyFile):
		return fiber.NewError(http.StatusBadRequest, "file is empty")
	case errors.Is(err, ErrTooLarge):
		return fiber.NewError(http.StatusRequestEntityTooLarge, "file is too large")
	default:
		return err
	}
}
