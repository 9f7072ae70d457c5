package scenarios

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"biasbuster-backend/internal/shared/server/respond"
)

// View is the public description of a scenario. System instructions stay
// server side.
type View struct {
	ID                      string     `json:"id"`
	Name                    string     `json:"name"`
	Description             string     `json:"description"`
	Prompt                  string     `json:"prompt"`
	ScoreBand               ScoreBand  `json:"scoreBand"`
	RequiresRecommendations bool       `json:"requiresRecommendations"`
	Demos                   []DemoInfo `json:"demos"`
}

// DemoInfo names a demo resume variant without its text.
type DemoInfo struct {
	Variant string `json:"variant"`
	Label   string `json:"label"`
}

// ViewOf builds the public view of s.
func ViewOf(s Spec) View {
	demos := make([]DemoInfo, 0, len(s.Demos))
	for _, d := range s.Demos {
		demos = append(demos, DemoInfo{Variant: d.Variant, Label: d.Label})
	}
	return View{
		ID:                      s.ID.String(),
		Name:                    s.Name,
		Description:             s.Description,
		Prompt:                  s.Prompt,
		ScoreBand:               s.ScoreBand,
		RequiresRecommendations: s.RequiresRecommendations,
		Demos:                   demos,
	}
}

// Handler serves the scenario catalog.
type Handler struct {
	Catalog *Catalog
}

// NewHandler constructs a Handler.
func NewHandler(catalog *Catalog) *Handler {
	return &Handler{Catalog: catalog}
}

// RegisterRoutes attaches scenario routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/scenarios", h.list)
	rg.GET("/scenarios/:id", h.get)
	rg.GET("/scenarios/:id/demo-resumes", h.demoResumes)
}

func (h *Handler) list(c *gin.Context) {
	specs := h.Catalog.All()
	out := make([]View, 0, len(specs))
	for _, s := range specs {
		out = append(out, ViewOf(s))
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	spec, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.OK(c, ViewOf(spec))
}

func (h *Handler) demoResumes(c *gin.Context) {
	spec, ok := h.lookup(c)
	if !ok {
		return
	}
	demos, err := spec.DemoResumes()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load demo resumes", nil)
		return
	}
	respond.OK(c, gin.H{"items": demos})
}

func (h *Handler) lookup(c *gin.Context) (Spec, bool) {
	id := Parse(c.Param("id"))
	if id == Unknown {
		respond.Error(c, http.StatusNotFound, "not_found", "scenario not found", nil)
		return Spec{}, false
	}
	return h.Catalog.Lookup(id), true
}
