package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brainwaves/internal/service"
)

// GroupHandler holds dependencies for the group endpoints.
type GroupHandler struct {
	logger    *zap.Logger
	groupServ *service.GroupService
}

func NewGroupHandler(logger *zap.Logger, groupServ *service.GroupService) *GroupHandler {
	return &GroupHandler{
		logger:    logger,
		groupServ: groupServ,
	}
}

// ListGroups handles GET /groups. Archived groups are hidden unless
// ?include_archived=true.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	includeArchived, _ := strconv.ParseBool(c.DefaultQuery("include_archived", "false"))

	groups, err := h.groupServ.List(c.Request.Context(), includeArchived)
	if err != nil {
		h.logger.Error("list groups failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not list groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// GetGroup handles GET /groups/:name, the scored dashboard payload.
func (h *GroupHandler) GetGroup(c *gin.Context) {
	detail, err := h.groupServ.Detail(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondGroupError(c, err, "group detail failed")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name             string `json:"name" binding:"required"`
		DisplayAs        string `json:"display_as"`
		ProfilerTypeName string `json:"profiler_type_name" binding:"required"`
		Emoji            string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create group request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	group, err := h.groupServ.Create(c.Request.Context(), req.Name, req.DisplayAs, req.ProfilerTypeName, req.Emoji)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupExists):
			c.JSON(http.StatusConflict, gin.H{"error": "group already exists"})
		case errors.Is(err, service.ErrInvalidGroupName), errors.Is(err, service.ErrInvalidEmoji):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrProfilerTypeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "profiler type not found"})
		default:
			h.logger.Error("create group failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"group": group})
}

// UpdateGroup handles PUT /groups/:name. A new_name renames the group and
// cascades onto its profiles.
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	var req struct {
		NewName   string  `json:"new_name"`
		DisplayAs *string `json:"display_as"`
		Archived  *bool   `json:"archived"`
		Emoji     *string `json:"emoji"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid update group request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	group, err := h.groupServ.Update(c.Request.Context(), c.Param("name"), service.GroupUpdate{
		NewName:   req.NewName,
		DisplayAs: req.DisplayAs,
		Archived:  req.Archived,
		Emoji:     req.Emoji,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupExists):
			c.JSON(http.StatusConflict, gin.H{"error": "group already exists"})
		case errors.Is(err, service.ErrInvalidEmoji):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid emoji"})
		default:
			h.respondGroupError(c, err, "update group failed")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// RegenerateToken handles POST /groups/:name/token. Old share links stop
// working immediately.
func (h *GroupHandler) RegenerateToken(c *gin.Context) {
	group, err := h.groupServ.RegenerateToken(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondGroupError(c, err, "regenerate token failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group})
}

// DeleteGroup handles DELETE /groups/:name.
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	if err := h.groupServ.Delete(c.Request.Context(), c.Param("name")); err != nil {
		h.respondGroupError(c, err, "delete group failed")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) respondGroupError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
	case errors.Is(err, service.ErrProfilerTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profiler type not found"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
