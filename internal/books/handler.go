package books

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rinkore1/BookServer/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the catalog endpoints on an authenticated
// route group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Add)
	rg.GET("/search", h.Search)
	rg.GET("/top", h.Top)
	rg.GET("/recommend", h.Recommend)
	rg.GET("/:id", h.GetByID)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
}

type bookRequest struct {
	Title      string `json:"title"`
	Author     string `json:"author"`
	Popularity int64  `json:"popularity"`
}

func queryInt(c *gin.Context, name string, fallback int) int {
	v := c.Query(name)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func (h *Handler) List(c *gin.Context) {
	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 10)

	result, err := h.service.List(c.Request.Context(), page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"books": result,
		"page":  page,
		"size":  size,
	})
}

func (h *Handler) GetByID(c *gin.Context) {
	b, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load book"})
		return
	}
	if b == nil {
		// degraded read path: indistinguishable from a miss
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) Search(c *gin.Context) {
	keyword := c.Query("q")
	page := queryInt(c, "page", 0)
	size := queryInt(c, "size", 10)

	result, err := h.service.Search(c.Request.Context(), keyword, page, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": result})
}

func (h *Handler) Top(c *gin.Context) {
	size := queryInt(c, "size", 10)

	result, err := h.service.Top(c.Request.Context(), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load top books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": result})
}

func (h *Handler) Recommend(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c.Request.Context())
	size := queryInt(c, "size", 10)

	preferences := h.service.PreferencesForUser(userID)
	result, err := h.service.Recommend(c.Request.Context(), preferences, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "recommendation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": result})
}

func (h *Handler) Add(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	id, err := h.service.Add(c.Request.Context(), &Book{
		Title:      req.Title,
		Author:     req.Author,
		Popularity: req.Popularity,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add book"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *Handler) Update(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := h.service.Update(c.Request.Context(), &Book{
		ID:         c.Param("id"),
		Title:      req.Title,
		Author:     req.Author,
		Popularity: req.Popularity,
	})
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update book"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) Delete(c *gin.Context) {
	err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete book"})
		return
	}

	c.Status(http.StatusNoContent)
}
