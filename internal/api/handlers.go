package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studybuddy/internal/config"
	"studybuddy/internal/ingest"
	"studybuddy/internal/models"
	"studybuddy/internal/service/ai"
	"studybuddy/internal/service/assistant"
	"studybuddy/internal/session"
)

const previewPrefix = "/api/previews"

// Handler wires HTTP routes to the assistant service.
type Handler struct {
	assistant      *assistant.Service
	cookieName     string
	sessionTTL     time.Duration
	maxUploadBytes int64
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service, cfg *config.Config) *Handler {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Handler{
		assistant:      service,
		cookieName:     cfg.Session.CookieName,
		sessionTTL:     time.Duration(cfg.Session.TTLMinutes) * time.Minute,
		maxUploadBytes: cfg.MaxUploadBytes(),
	}
}

// RegisterRoutes attaches all HTTP routes to the router.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.GET("/healthz", h.health)

	api := router.Group("/api")
	api.Use(session.Middleware(h.cookieName, h.sessionTTL))
	api.GET("/state", h.getState)
	api.POST("/files", h.uploadFile)
	api.DELETE("/files/:id", h.deleteFile)
	api.GET("/previews/:handle", h.getPreview)
	api.POST("/timeline", h.generateTimeline)
	api.POST("/insights", h.predictExam)
	api.POST("/search", h.search)
	api.POST("/images/edit", h.editImage)
	api.POST("/images/generate", h.generateVisualAid)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sessionID(c *gin.Context) (string, bool) {
	id, ok := session.IDFromContext(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session unavailable"})
		return "", false
	}
	return id, true
}

type stateResponse struct {
	Files       []models.FileView                    `json:"files"`
	Timeline    []models.TimelineEvent               `json:"timeline"`
	Insights    []models.StudyInsight                `json:"insights"`
	Search      *models.SearchResult                 `json:"search"`
	VisualAid   *models.GeneratedImage               `json:"visual_aid"`
	EditedImage *models.GeneratedImage               `json:"edited_image"`
	Activity    map[session.Feature]session.Activity `json:"activity"`
	UpdatedAt   time.Time                            `json:"updated_at"`
}

func newStateResponse(st *session.State) stateResponse {
	resp := stateResponse{
		Files:       make([]models.FileView, 0, len(st.Files)),
		Timeline:    st.Timeline,
		Insights:    st.Insights,
		Search:      st.Search,
		VisualAid:   st.VisualAid,
		EditedImage: st.EditedImage,
		Activity:    make(map[session.Feature]session.Activity, len(session.Features)),
		UpdatedAt:   st.UpdatedAt,
	}
	for i := range st.Files {
		resp.Files = append(resp.Files, st.Files[i].View(previewPrefix))
	}
	if resp.Timeline == nil {
		resp.Timeline = make([]models.TimelineEvent, 0)
	}
	if resp.Insights == nil {
		resp.Insights = make([]models.StudyInsight, 0)
	}
	for _, f := range session.Features {
		resp.Activity[f] = st.Activity[f]
	}
	return resp
}

func (h *Handler) getState(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	st, err := h.assistant.Snapshot(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newStateResponse(st))
}

func (h *Handler) uploadFile(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	name := filepath.Base(header.Filename)
	mimeType := header.Header.Get("Content-Type")

	var category models.FileCategory
	if raw := c.PostForm("category"); strings.TrimSpace(raw) != "" {
		category, err = models.ParseFileCategory(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	} else if category, ok = models.InferCategory(name, mimeType); !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	defer f.Close()

	file, err := h.assistant.AddFile(c.Request.Context(), id, f, name, mimeType, category)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, file.View(previewPrefix))
}

func (h *Handler) deleteFile(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	if err := h.assistant.RemoveFile(c.Request.Context(), id, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getPreview(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	p, err := h.assistant.Preview(c.Request.Context(), id, c.Param("handle"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, p.MIMEType, p.Data)
}

func (h *Handler) generateTimeline(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	events, err := h.assistant.GenerateTimeline(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"timeline": events})
}

func (h *Handler) predictExam(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	insights, err := h.assistant.PredictExam(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights})
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) search(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.assistant.Search(c.Request.Context(), id, req.Query)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type editImageRequest struct {
	FileID      string `json:"file_id"`
	Instruction string `json:"instruction"`
}

func (h *Handler) editImage(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req editImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	img, err := h.assistant.EditImage(c.Request.Context(), id, req.FileID, req.Instruction)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

type visualAidRequest struct {
	Description string `json:"description"`
}

func (h *Handler) generateVisualAid(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req visualAidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	img, err := h.assistant.GenerateVisualAid(c.Request.Context(), id, req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, img)
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ai.ErrNoFiles),
		errors.Is(err, ai.ErrEmptyQuery),
		errors.Is(err, ai.ErrMissingImage),
		errors.Is(err, ai.ErrEmptyInstruction),
		errors.Is(err, ai.ErrEmptyDescription),
		errors.Is(err, ingest.ErrRead):
		return http.StatusBadRequest
	case errors.Is(err, assistant.ErrFileNotFound),
		errors.Is(err, session.ErrPreviewNotFound):
		return http.StatusNotFound
	case errors.Is(err, ai.ErrCollaborator),
		errors.Is(err, ai.ErrNoImage),
		errors.Is(err, ai.ErrEmptyReply),
		errors.Is(err, ai.ErrMalformedReply):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
