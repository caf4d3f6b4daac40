package medication

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
	read := api.Group("/medications", auth.RequireCapability("medications.read"))
	read.GET("", h.ListMedications)
	read.GET("/:id", h.GetMedication)
	read.GET("/:id/administrations", h.ListAdministrations)

	write := api.Group("/medications", auth.RequireCapability("medications.write"))
	write.POST("", h.CreateMedication)
	write.PUT("/:id", h.UpdateMedication)
	write.POST("/:id/discontinue", h.Discontinue)

	// Recording an administration needs its own capability: counselors can
	// never do it, and it is distinct from editing the order itself.
	administer := api.Group("/medications", auth.RequireCapability("medications.administer"))
	administer.POST("/:id/administrations", h.RecordAdministration)
}

func (h *Handler) CreateMedication(c echo.Context) error {
	if err := auth.CheckCapability(c, "medications.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := h.svc.CreateMedication(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) GetMedication(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.GetMedication(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrMedicationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load medication")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) ListMedications(c echo.Context) error {
	p := pagination.FromContext(c)

	var studentID uuid.UUID
	if sid := c.QueryParam("student_id"); sid != "" {
		var err error
		if studentID, err = uuid.Parse(sid); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid student_id")
		}
	}

	meds, total, err := h.svc.ListMedications(c.Request().Context(), studentID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list medications")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(meds, total, p.Limit, p.Offset))
}

func (h *Handler) UpdateMedication(c echo.Context) error {
	if err := auth.CheckCapability(c, "medications.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var m Medication
	if err := c.Bind(&m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	m.ID = id
	if err := h.svc.UpdateMedication(c.Request().Context(), &m); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) Discontinue(c echo.Context) error {
	if err := auth.CheckCapability(c, "medications.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	m, err := h.svc.Discontinue(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrMedicationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to discontinue medication")
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) RecordAdministration(c echo.Context) error {
	if err := auth.CheckCapability(c, "medications.administer"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var a Administration
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	a.MedicationID = medicationID
	a.AdministeredBy = auth.UserIDFromContext(c.Request().Context())

	if err := h.svc.RecordAdministration(c.Request().Context(), &a); err != nil {
		if errors.Is(err, ErrMedicationNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "medication not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) ListAdministrations(c echo.Context) error {
	medicationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p := pagination.FromContext(c)
	entries, total, err := h.svc.ListAdministrations(c.Request().Context(), medicationID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list administrations")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(entries, total, p.Limit, p.Offset))
}
