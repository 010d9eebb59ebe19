package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"secassist/internal/service/ai"
	"secassist/internal/service/assistant"
)

// room for multipart headers and boundaries on top of the file ceiling
const multipartOverhead = 1 << 20

// Handler wires HTTP routes to the assistant service.
type Handler struct {
	assistant *assistant.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(service *assistant.Service) *Handler {
	return &Handler{assistant: service}
}

// RegisterRoutes attaches all HTTP routes to the router. The router should
// come from gin.New; RegisterRoutes installs its own recovery middleware.
func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.HandleMethodNotAllowed = true
	router.Use(Recovery(), cors.Default())
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	})

	router.GET("/health", h.health)
	router.POST("/upload", h.uploadFile)
	router.POST("/chat", h.chat)
	router.POST("/clear", h.clearDocuments)
	router.GET("/documents", h.listDocuments)
}

// Recovery answers a panicking handler with a JSON 500. gin.Recovery would
// reply with an empty body.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Printf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) uploadFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.assistant.MaxUploadBytes()+multipartOverhead)
	file, err := c.FormFile("file")
	if err != nil {
		switch {
		case isBodyTooLarge(err):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": assistant.ErrFileTooLarge.Error()})
		case errors.Is(err, http.ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": assistant.ErrFileRequired.Error()})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		}
		return
	}
	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file selected"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "open file failed"})
		return
	}
	defer f.Close()

	record, err := h.assistant.SaveUpload(c.Request.Context(), file.Filename, file.Size, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"file_id":  record.ID,
		"filename": record.FileName,
		"message":  "File uploaded successfully",
	})
}

type chatRequest struct {
	Message string   `json:"message"`
	FileIDs []string `json:"file_ids"`
}

func (h *Handler) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	result, err := h.assistant.Chat(c.Request.Context(), req.Message, req.FileIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	payload := gin.H{"response": result.Response}
	if len(result.MissingFileIDs) > 0 {
		payload["missing_file_ids"] = result.MissingFileIDs
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) clearDocuments(c *gin.Context) {
	removed, err := h.assistant.Clear(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "documents cleared, but some files could not be removed from disk"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "All documents cleared",
		"removed": removed,
	})
}

func (h *Handler) listDocuments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"documents": h.assistant.ListDocuments()})
}

// writeError maps service errors to status codes. Upstream and storage
// details are logged by the service and never sent to the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, assistant.ErrFileRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": assistant.ErrFileRequired.Error()})
	case errors.Is(err, assistant.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": assistant.ErrEmptyMessage.Error()})
	case errors.Is(err, assistant.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": assistant.ErrFileTooLarge.Error()})
	case errors.Is(err, assistant.ErrUnsupportedType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported file type, allowed: .txt, .pdf, .doc, .docx, .md"})
	case errors.Is(err, ai.ErrUpstream):
		c.JSON(http.StatusBadGateway, gin.H{"error": "the AI service could not answer, please retry"})
	case errors.Is(err, assistant.ErrStorage):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store document"})
	default:
		log.Printf("unhandled request error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
