package healthrecord

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/whitecross/server/internal/platform/auth"
	"github.com/whitecross/server/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("/health-records", auth.RequireCapability("health_records.read"))
	read.GET("", h.ListRecords)
	read.GET("/:id", h.GetRecord)

	write := api.Group("/health-records", auth.RequireCapability("health_records.write"))
	write.POST("", h.CreateRecord)
	write.PATCH("/:id", h.UpdateRecord)
	write.DELETE("/:id", h.DeleteRecord)

	// Param name matches the student routes so echo accepts both trees.
	allergyRead := api.Group("/students/:id/allergies", auth.RequireCapability("health_records.read"))
	allergyRead.GET("", h.ListAllergies)

	allergyWrite := api.Group("/students/:id/allergies", auth.RequireCapability("health_records.write"))
	allergyWrite.POST("", h.AddAllergy)
	allergyWrite.DELETE("/:allergy_id", h.RemoveAllergy)
}

func (h *Handler) CreateRecord(c echo.Context) error {
	if err := auth.CheckCapability(c, "health_records.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	var rec HealthRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	rec.RecordedBy = auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.CreateRecord(c.Request().Context(), &rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load record")
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListRecords(c echo.Context) error {
	studentID, err := uuid.Parse(c.QueryParam("student_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "student_id query parameter is required")
	}
	p := pagination.FromContext(c)

	records, total, err := h.svc.ListRecords(c.Request().Context(), studentID, c.QueryParam("type"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(records, total, p.Limit, p.Offset))
}

type updateRecordRequest struct {
	RecordType string  `json:"record_type"`
	Summary    string  `json:"summary"`
	Details    *string `json:"details"`
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	if err := auth.CheckCapability(c, "health_records.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	rec, err := h.svc.UpdateRecord(c.Request().Context(), id, req.RecordType, req.Summary, req.Details)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "record not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	if err := auth.CheckCapability(c, "health_records.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete record")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddAllergy(c echo.Context) error {
	if err := auth.CheckCapability(c, "health_records.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	var a Allergy
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	a.StudentID = studentID
	if err := h.svc.AddAllergy(c.Request().Context(), &a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAllergies(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid student id")
	}
	allergies, err := h.svc.ListAllergies(c.Request().Context(), studentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list allergies")
	}
	return c.JSON(http.StatusOK, allergies)
}

func (h *Handler) RemoveAllergy(c echo.Context) error {
	if err := auth.CheckCapability(c, "health_records.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("allergy_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveAllergy(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove allergy")
	}
	return c.NoContent(http.StatusNoContent)
}
