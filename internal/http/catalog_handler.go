package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brainwaves/internal/catalog"
	"brainwaves/internal/repository"
)

// CatalogHandler serves profiler type definitions and practice taxonomies.
// Both parents and teachers need them: the parent app renders the
// questionnaire from the profiler type, the teacher app the practice tree.
type CatalogHandler struct {
	logger        *zap.Logger
	profilerTypes repository.ProfilerTypeRepository
	catalog       *catalog.Catalog
}

func NewCatalogHandler(logger *zap.Logger, profilerTypes repository.ProfilerTypeRepository, cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		logger:        logger,
		profilerTypes: profilerTypes,
		catalog:       cat,
	}
}

// ListProfilerTypes handles GET /profiler-types.
func (h *CatalogHandler) ListProfilerTypes(c *gin.Context) {
	names, err := h.profilerTypes.ListNames(c.Request.Context())
	if err != nil {
		h.logger.Error("list profiler types failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list profiler types"})
		return
	}
	if names == nil {
		names = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"profiler_types": names})
}

// GetProfilerType handles GET /profiler-types/:name.
func (h *CatalogHandler) GetProfilerType(c *gin.Context) {
	name := c.Param("name")
	ref, err := h.profilerTypes.GetByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profiler type not found"})
			return
		}
		h.logger.Error("get profiler type failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get profiler type"})
		return
	}

	pt, err := h.catalog.LoadProfilerType(ref)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidFilename) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profiler type not found"})
			return
		}
		h.logger.Error("load profiler type failed", zap.String("name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load profiler type"})
		return
	}
	c.JSON(http.StatusOK, pt)
}

// GetPracticeTaxonomy handles GET /practices/:source.
func (h *CatalogHandler) GetPracticeTaxonomy(c *gin.Context) {
	source := c.Param("source")
	taxonomy, err := h.catalog.LoadTaxonomy(source)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) || errors.Is(err, catalog.ErrInvalidFilename) {
			c.JSON(http.StatusNotFound, gin.H{"error": "practice source not found"})
			return
		}
		h.logger.Error("load practice taxonomy failed", zap.String("source", source), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load practices"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"practices": taxonomy})
}
