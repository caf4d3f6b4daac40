package student

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
	read := api.Group("/students", auth.RequireCapability("students.read"))
	read.GET("", h.ListStudents)
	read.GET("/:id", h.GetStudent)
	read.GET("/:id/contacts", h.ListContacts)

	write := api.Group("/students", auth.RequireCapability("students.write"))
	write.POST("", h.CreateStudent)
	write.PUT("/:id", h.UpdateStudent)
	write.DELETE("/:id", h.DeleteStudent)
	write.POST("/:id/contacts", h.AddContact)
	write.DELETE("/:id/contacts/:contact_id", h.RemoveContact)
}

func (h *Handler) CreateStudent(c echo.Context) error {
	// Route middleware already gated this; re-check before mutating so the
	// write cannot be reached if the route wiring ever changes.
	if err := auth.CheckCapability(c, "students.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	var st Student
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	if err := h.svc.CreateStudent(c.Request().Context(), &st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, st)
}

func (h *Handler) GetStudent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	st, err := h.svc.GetStudent(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load student")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) ListStudents(c echo.Context) error {
	p := pagination.FromContext(c)
	students, total, err := h.svc.ListStudents(c.Request().Context(), c.QueryParam("q"), p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list students")
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(students, total, p.Limit, p.Offset))
}

func (h *Handler) UpdateStudent(c echo.Context) error {
	if err := auth.CheckCapability(c, "students.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var st Student
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	st.ID = id
	if err := h.svc.UpdateStudent(c.Request().Context(), &st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) DeleteStudent(c echo.Context) error {
	if err := auth.CheckCapability(c, "students.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteStudent(c.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to delete student")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) AddContact(c echo.Context) error {
	if err := auth.CheckCapability(c, "students.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var contact EmergencyContact
	if err := c.Bind(&contact); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}
	contact.StudentID = studentID
	if err := h.svc.AddContact(c.Request().Context(), &contact); err != nil {
		if errors.Is(err, ErrStudentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "student not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, contact)
}

func (h *Handler) ListContacts(c echo.Context) error {
	studentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	contacts, err := h.svc.ListContacts(c.Request().Context(), studentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list contacts")
	}
	return c.JSON(http.StatusOK, contacts)
}

func (h *Handler) RemoveContact(c echo.Context) error {
	if err := auth.CheckCapability(c, "students.write"); err != nil {
		return echo.NewHTTPError(http.StatusForbidden, "access denied")
	}

	contactID, err := uuid.Parse(c.Param("contact_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.RemoveContact(c.Request().Context(), contactID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to remove contact")
	}
	return c.NoContent(http.StatusNoContent)
}
