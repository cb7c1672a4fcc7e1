package assignment

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/asistia/care-api/internal/handler"
	"github.com/asistia/care-api/internal/model"
	"github.com/asistia/care-api/internal/service/assignment"
)

type Handler struct {
	service *assignment.Service
}

func NewHandler(service *assignment.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	assignments := r.Group("/asignaciones")
	{
		assignments.POST("", h.Create)
		assignments.DELETE("/usuarios/:userId/pacientes/:patientId", h.Delete)
		assignments.GET("/usuarios/:userId", h.ListByUser)
		assignments.GET("/pacientes/:patientId", h.ListByPatient)
	}

	caregivers := r.Group("/asignaciones-cuidador")
	{
		caregivers.POST("", h.CreateCaregiverGrant)
		caregivers.DELETE("/pacientes/:patientId/cuidadores/:caregiverId", h.DeleteCaregiverGrant)
		caregivers.GET("/cuidadores/:caregiverId", h.ListByCaregiver)
		caregivers.GET("/pacientes/:patientId", h.ListCaregiversByPatient)
	}
}

func (h *Handler) Create(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("cuerpo de la solicitud inválido"))
		return
	}
	handler.Respond(c, http.StatusCreated, h.service.Create(c.Request.Context(), caller, &req))
}

func (h *Handler) Delete(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	userID, ok := handler.PathID(c, "userId")
	if !ok {
		return
	}
	patientID, ok := handler.PathID(c, "patientId")
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.Delete(c.Request.Context(), caller, userID, patientID))
}

func (h *Handler) ListByUser(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	userID, ok := handler.PathID(c, "userId")
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.ListByUser(c.Request.Context(), caller, userID, page))
}

func (h *Handler) ListByPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	patientID, ok := handler.PathID(c, "patientId")
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.ListByPatient(c.Request.Context(), caller, patientID, page))
}

func (h *Handler) CreateCaregiverGrant(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	var req model.CreateCaregiverAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.Fail("cuerpo de la solicitud inválido"))
		return
	}
	handler.Respond(c, http.StatusCreated, h.service.CreateCaregiverGrant(c.Request.Context(), caller, &req))
}

func (h *Handler) DeleteCaregiverGrant(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	patientID, ok := handler.PathID(c, "patientId")
	if !ok {
		return
	}
	caregiverID, ok := handler.PathID(c, "caregiverId")
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.DeleteCaregiverGrant(c.Request.Context(), caller, patientID, caregiverID))
}

func (h *Handler) ListByCaregiver(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	caregiverID, ok := handler.PathID(c, "caregiverId")
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.ListByCaregiver(c.Request.Context(), caller, caregiverID, page))
}

func (h *Handler) ListCaregiversByPatient(c *gin.Context) {
	caller, ok := handler.Caller(c)
	if !ok {
		return
	}
	patientID, ok := handler.PathID(c, "patientId")
	if !ok {
		return
	}
	page, ok := handler.PageFrom(c)
	if !ok {
		return
	}
	handler.Respond(c, http.StatusOK, h.service.ListCaregiversByPatient(c.Request.Context(), caller, patientID, page))
}
