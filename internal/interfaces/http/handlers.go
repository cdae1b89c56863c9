package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/application/service"
	appwf "github.com/tjpa/agil-workflow/internal/application/workflow"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	engine                appwf.Engine
	solicitationService   service.SolicitationService
	accountabilityService service.AccountabilityService
	inboxService          service.InboxService
	reportService         service.ReportService
	identity              port.IdentityProvider
	logger                Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine appwf.Engine,
	solicitationService service.SolicitationService,
	accountabilityService service.AccountabilityService,
	inboxService service.InboxService,
	reportService service.ReportService,
	identityProvider port.IdentityProvider,
	logger Logger,
) *Handlers {
	return &Handlers{
		engine:                engine,
		solicitationService:   solicitationService,
		accountabilityService: accountabilityService,
		inboxService:          inboxService,
		reportService:         reportService,
		identity:              identityProvider,
		logger:                logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// TransitionRequest is the body of POST /api/solicitations/:id/transition.
// Actor fields may be omitted when the gateway forwards the identity in
// headers.
type TransitionRequest struct {
	Trigger     string `json:"trigger" binding:"required"`
	ActorID     string `json:"actor_id"`
	ActorName   string `json:"actor_name"`
	Role        string `json:"role"`
	Description string `json:"description"`
}

// AssignRequest is the body of POST /api/solicitations/:id/assign
type AssignRequest struct {
	AnalystID string `json:"analyst_id" binding:"required"`
}

// RiskRequest is the body of POST /api/accountabilities/:id/risk
type RiskRequest struct {
	Risk      string   `json:"risk" binding:"required"`
	Alerts    []string `json:"alerts"`
	ActorName string   `json:"actor_name"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// CreateSolicitation handles POST /api/solicitations
func (h *Handlers) CreateSolicitation(c *gin.Context) {
	var input service.CreateSolicitationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	sol, err := h.solicitationService.Create(c.Request.Context(), input)
	if err != nil {
		h.logger.Error("Failed to create solicitation", "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: sol})
}

// GetSolicitation handles GET /api/solicitations/:id
func (h *Handlers) GetSolicitation(c *gin.Context) {
	detail, err := h.solicitationService.Detail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.logger.Error("Failed to get solicitation", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "solicitation not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: detail})
}

// Transition handles POST /api/solicitations/:id/transition
func (h *Handlers) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	actor := appwf.Actor{
		ID:   req.ActorID,
		Name: req.ActorName,
		Role: domainwf.Role(req.Role),
	}
	if actor.Role == "" {
		user := h.currentUser(c)
		if user == nil {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: "role is required"})
			return
		}
		actor = appwf.Actor{ID: user.ID, Name: user.Name, Role: domainwf.Role(user.Role)}
	}

	sol, err := h.engine.Execute(c.Request.Context(), c.Param("id"),
		domainwf.Trigger(req.Trigger), actor, req.Description)
	if err != nil {
		h.transitionError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: sol})
}

// PermittedTriggers handles GET /api/solicitations/:id/triggers
func (h *Handlers) PermittedTriggers(c *gin.Context) {
	role := domainwf.Role(c.Query("role"))
	if role == "" {
		if user := h.currentUser(c); user != nil {
			role = domainwf.Role(user.Role)
		}
	}
	if role == "" {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "role query parameter is required"})
		return
	}

	triggers, err := h.engine.PermittedTriggers(c.Request.Context(), c.Param("id"), role)
	if err != nil {
		h.logger.Error("Failed to list triggers", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "solicitation not found"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: triggers})
}

// AssignAnalyst handles POST /api/solicitations/:id/assign
func (h *Handlers) AssignAnalyst(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	err := h.solicitationService.AssignAnalyst(c.Request.Context(), c.Param("id"), req.AnalystID)
	if err != nil {
		if errors.Is(err, domainwf.ErrAssignmentConflict) {
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("Failed to assign analyst", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to assign analyst"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// AssignAccountabilityAnalyst handles POST /api/accountabilities/:id/assign
func (h *Handlers) AssignAccountabilityAnalyst(c *gin.Context) {
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	err := h.accountabilityService.AssignAnalyst(c.Request.Context(), c.Param("id"), req.AnalystID)
	if err != nil {
		if errors.Is(err, domainwf.ErrAssignmentConflict) {
			c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
			return
		}
		h.logger.Error("Failed to assign accountability analyst", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to assign analyst"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// GetAccountability handles GET /api/accountabilities/:id
func (h *Handlers) GetAccountability(c *gin.Context) {
	acc, err := h.accountabilityService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "accountability not found"})
		return
	}

	items, err := h.accountabilityService.Items(c.Request.Context(), acc.ID)
	if err != nil {
		h.logger.Error("Failed to list items", "id", acc.ID, "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list items"})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{
		"accountability": acc,
		"items":          items,
		"overdue":        acc.Overdue(time.Now()),
	}})
}

// AddItem handles POST /api/accountabilities/:id/items
func (h *Handlers) AddItem(c *gin.Context) {
	var input service.AddItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	item, err := h.accountabilityService.AddItem(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.logger.Error("Failed to add item", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: item})
}

// RemoveItem handles DELETE /api/accountabilities/:id/items/:itemID
func (h *Handlers) RemoveItem(c *gin.Context) {
	err := h.accountabilityService.RemoveItem(c.Request.Context(), c.Param("id"), c.Param("itemID"))
	if err != nil {
		h.logger.Error("Failed to remove item", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// ReevaluateRisk handles POST /api/accountabilities/:id/risk
func (h *Handlers) ReevaluateRisk(c *gin.Context) {
	var req RiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request body", err)
		return
	}

	err := h.accountabilityService.ReevaluateRisk(c.Request.Context(), c.Param("id"),
		entity.RiskLevel(req.Risk), req.Alerts, req.ActorName)
	if err != nil {
		h.logger.Error("Failed to reevaluate risk", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true})
}

// Inbox handles GET /api/inbox/:module
func (h *Handlers) Inbox(c *gin.Context) {
	module := entity.Module(c.Param("module"))
	view, err := h.inboxService.Inbox(c.Request.Context(), module, c.Query("user_id"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: view})
}

// Queue handles GET /api/queue/:module
func (h *Handlers) Queue(c *gin.Context) {
	module := entity.Module(c.Param("module"))
	scored, err := h.inboxService.Queue(c.Request.Context(), module, c.Query("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Data: scored})
}

// ExportQueue handles GET /api/reports/queue/:module
func (h *Handlers) ExportQueue(c *gin.Context) {
	module := entity.Module(c.Param("module"))
	data, err := h.reportService.ExportQueue(c.Request.Context(), module, c.Query("user_id"))
	if err != nil {
		h.logger.Error("Failed to export queue report", "module", string(module), "error", err)
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="fila-`+string(module)+`.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// currentUser resolves the forwarded identity, if any.
func (h *Handlers) currentUser(c *gin.Context) *entity.User {
	if h.identity == nil {
		return nil
	}
	user, err := h.identity.CurrentUser(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to resolve identity", "error", err)
		return nil
	}
	return user
}

func (h *Handlers) badRequest(c *gin.Context, msg string, err error) {
	h.logger.Error(msg, "error", err)
	c.JSON(http.StatusBadRequest, Response{Success: false, Error: msg})
}

// transitionError maps workflow errors onto HTTP statuses: unknown
// transitions are unprocessable, role failures forbidden and lost races a
// conflict.
func (h *Handlers) transitionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainwf.ErrInvalidTransition):
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domainwf.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, Response{Success: false, Error: err.Error()})
	case errors.Is(err, domainwf.ErrStatusConflict):
		c.JSON(http.StatusConflict, Response{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Transition failed", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "transition failed"})
	}
}
