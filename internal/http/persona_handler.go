package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/repository"
	"reddit-persona/internal/service"
)

const maxRelatedTopics = 50

// PersonaGenerator es la parte del pipeline que consumen los handlers.
type PersonaGenerator interface {
	Generate(ctx context.Context, input string) (domain.PersonaReport, error)
	Topics(ctx context.Context, input string) (string, domain.TopicSummary, error)
}

// PersonaHandler expone el pipeline y los reportes guardados como JSON.
type PersonaHandler struct {
	logger    *zap.Logger
	personas  PersonaGenerator
	reports   repository.ReportRepository
	topicRepo repository.TopicRepository
}

// NewPersonaHandler acepta repositorios nil cuando no hay base de datos.
func NewPersonaHandler(
	logger *zap.Logger,
	personas PersonaGenerator,
	reports repository.ReportRepository,
	topicRepo repository.TopicRepository,
) *PersonaHandler {
	return &PersonaHandler{
		logger:    logger,
		personas:  personas,
		reports:   reports,
		topicRepo: topicRepo,
	}
}

type handleRequest struct {
	Handle string `json:"handle" binding:"required"`
}

// CreatePersona maneja POST /api/personas.
func (h *PersonaHandler) CreatePersona(c *gin.Context) {
	var req handleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create persona request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	report, err := h.personas.Generate(c.Request.Context(), req.Handle)
	if err != nil {
		status, msg := serviceErrorStatus(err)
		h.logger.Warn("generate persona failed", zap.String("handle", req.Handle), zap.Int("status", status), zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// CreateTopics maneja POST /api/topics.
func (h *PersonaHandler) CreateTopics(c *gin.Context) {
	var req handleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid topics request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	handle, summary, err := h.personas.Topics(c.Request.Context(), req.Handle)
	if err != nil {
		status, msg := serviceErrorStatus(err)
		h.logger.Warn("topic labeling failed", zap.String("handle", req.Handle), zap.Error(err))
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"handle": handle, "topics": summary})
}

// GetPersona maneja GET /api/personas/:id.
func (h *PersonaHandler) GetPersona(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// GetPersonaText maneja GET /api/personas/:id/text.
func (h *PersonaHandler) GetPersonaText(c *gin.Context) {
	report, ok := h.loadReport(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+report.Handle+`_persona.txt"`)
	c.String(http.StatusOK, service.RenderPersonaText(report))
}

// ListPersonas maneja GET /api/personas?handle=.
func (h *PersonaHandler) ListPersonas(c *gin.Context) {
	if h.reports == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "storage disabled"})
		return
	}
	handle, err := service.ParseHandle(c.Query("handle"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid handle"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, err := h.reports.ListByHandle(c.Request.Context(), handle, limit)
	if err != nil {
		h.logger.Error("list reports failed", zap.String("handle", handle), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list reports"})
		return
	}
	if reports == nil {
		reports = []domain.PersonaReport{}
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// RelatedTopics maneja GET /api/personas/:id/related?k=N.
func (h *PersonaHandler) RelatedTopics(c *gin.Context) {
	if h.topicRepo == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "storage disabled"})
		return
	}
	k := repository.DefaultRelatedTopics
	if raw := c.Query("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxRelatedTopics {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("k must be between 1 and %d", maxRelatedTopics)})
			return
		}
		k = n
	}

	related, err := h.topicRepo.Related(c.Request.Context(), c.Param("id"), k)
	if err != nil {
		h.logger.Error("related topics failed", zap.String("report_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load related topics"})
		return
	}
	if related == nil {
		related = []domain.RelatedTopic{}
	}
	c.JSON(http.StatusOK, gin.H{"related": related})
}

func (h *PersonaHandler) loadReport(c *gin.Context) (domain.PersonaReport, bool) {
	if h.reports == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "storage disabled"})
		return domain.PersonaReport{}, false
	}
	report, err := h.reports.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "report not found"})
		return domain.PersonaReport{}, false
	}
	if err != nil {
		h.logger.Error("get report failed", zap.String("report_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load report"})
		return domain.PersonaReport{}, false
	}
	return report, true
}

// serviceErrorStatus traduce los errores del pipeline a status y mensaje para el usuario.
func serviceErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidHandle):
		return http.StatusBadRequest, "invalid reddit handle or profile url"
	case errors.Is(err, service.ErrAccountNotFound):
		return http.StatusNotFound, "reddit account not found"
	case errors.Is(err, service.ErrSourceUnavailable):
		return http.StatusBadGateway, "reddit is unavailable, try again later"
	case errors.Is(err, service.ErrServiceFailure):
		return http.StatusBadGateway, "persona generation failed: language model unavailable"
	case errors.Is(err, service.ErrMalformedResponse):
		return http.StatusBadGateway, "persona generation failed: language model returned an unreadable answer"
	case errors.Is(err, service.ErrTopicsDisabled):
		return http.StatusServiceUnavailable, "topic labeling is disabled"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
