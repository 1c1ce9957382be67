package http

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reddit-persona/internal/domain"
	"reddit-persona/internal/service"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templateFuncs = template.FuncMap{
	"value": domain.Value,
	"loose": func(v *domain.LooseString) string {
		if v == nil {
			return "N/A"
		}
		return v.String()
	},
	"join": strings.Join,
}

// loadTemplates parsea las vistas embebidas; un template roto es un error de build.
func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html"))
}

// FormHandler sirve el formulario HTML y la pagina de resultado.
type FormHandler struct {
	logger   *zap.Logger
	personas PersonaGenerator
	stored   bool
}

// NewFormHandler: stored indica si los reportes se guardan y se puede ofrecer la descarga.
func NewFormHandler(logger *zap.Logger, personas PersonaGenerator, stored bool) *FormHandler {
	return &FormHandler{logger: logger, personas: personas, stored: stored}
}

// Index maneja GET /.
func (h *FormHandler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{"Title": "Reddit Persona", "Profile": ""})
}

// Generate maneja POST /persona.
func (h *FormHandler) Generate(c *gin.Context) {
	profile := strings.TrimSpace(c.PostForm("profile"))

	report, err := h.personas.Generate(c.Request.Context(), profile)
	if err != nil {
		status, msg := serviceErrorStatus(err)
		h.logger.Warn("form generate failed", zap.String("profile", profile), zap.Int("status", status), zap.Error(err))
		c.HTML(status, "error.html", gin.H{"Title": "Error", "Profile": profile, "Message": msg})
		return
	}

	c.HTML(http.StatusOK, "persona.html", gin.H{
		"Title":  "Persona for " + report.Handle,
		"Report": report,
		"Stored": h.stored,
		"Text":   service.RenderPersonaText(report),
	})
}
