package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"brainwaves/internal/domain"
	"brainwaves/internal/scoring"
	"brainwaves/internal/service"
)

// ProfileHandler holds dependencies for the profile endpoints.
type ProfileHandler struct {
	logger      *zap.Logger
	profileServ *service.ProfileService
}

func NewProfileHandler(logger *zap.Logger, profileServ *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		logger:      logger,
		profileServ: profileServ,
	}
}

// CreateProfile handles POST /profiles. The group share token in the body is
// the only credential; the response carries the profile token the parent
// keeps for all later edits.
func (h *ProfileHandler) CreateProfile(c *gin.Context) {
	var req struct {
		GroupToken string `json:"group_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid create profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, token, err := h.profileServ.Create(c.Request.Context(), req.GroupToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		case errors.Is(err, service.ErrGroupArchived):
			c.JSON(http.StatusForbidden, gin.H{"error": "group archived"})
		default:
			h.logger.Error("create profile failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create profile"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{"profile": profile, "token": token})
}

// GetProfile handles GET /profiles/:id. Parents holding a profile token see
// the profile while it is Incomplete; teachers see it once Complete.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	id := c.Param("id")
	isTeacher, ok := h.authorize(c, id)
	if !ok {
		return
	}

	var (
		profile domain.Profile
		err     error
	)
	if isTeacher {
		profile, err = h.profileServ.GetComplete(c.Request.Context(), id)
	} else {
		profile, err = h.profileServ.GetEditable(c.Request.Context(), id)
	}
	if err != nil {
		h.respondProfileError(c, err, "get profile failed")
		return
	}

	answers, err := h.profileServ.Answers(c.Request.Context(), profile.ID)
	if err != nil {
		h.respondProfileError(c, err, "list answers failed")
		return
	}
	if answers == nil {
		answers = []domain.Answer{}
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile, "answers": answers})
}

// SubmitAnswer handles POST /profiles/:id/answer.
func (h *ProfileHandler) SubmitAnswer(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	var req struct {
		Question string `json:"question" binding:"required"`
		Score    *int   `json:"score" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid answer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	answer, updated, err := h.profileServ.SubmitAnswer(c.Request.Context(), id, req.Question, *req.Score)
	if err != nil {
		switch {
		case errors.Is(err, scoring.ErrUnknownQuestion), errors.Is(err, service.ErrInvalidScore):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			h.respondProfileError(c, err, "submit answer failed")
		}
		return
	}

	status := http.StatusCreated
	if updated {
		status = http.StatusOK
	}
	c.JSON(status, gin.H{"answer": answer})
}

// UpdateName handles PUT /profiles/:id/name.
func (h *ProfileHandler) UpdateName(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid name request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	profile, err := h.profileServ.UpdateName(c.Request.Context(), id, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrInvalidProfileName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid name"})
			return
		}
		h.respondProfileError(c, err, "update name failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// Complete handles POST /profiles/:id/complete. After this the parent's
// token stops resolving the profile and it appears on the teacher dashboard.
func (h *ProfileHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	profile, err := h.profileServ.Complete(c.Request.Context(), id)
	if err != nil {
		h.respondProfileError(c, err, "complete profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// DeleteProfile handles DELETE /profiles/:id.
func (h *ProfileHandler) DeleteProfile(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	if err := h.profileServ.Delete(c.Request.Context(), id); err != nil {
		h.respondProfileError(c, err, "delete profile failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// Scores handles GET /profiles/:id/scores.
func (h *ProfileHandler) Scores(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	scores, err := h.profileServ.Scores(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, scoring.ErrUnknownQuestion) {
			h.logger.Error("profile answers disagree with profiler type", zap.String("profile_id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not score profile"})
			return
		}
		h.respondProfileError(c, err, "score profile failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"scores": scores})
}

// Recommendations handles GET /profiles/:id/recommendations.
func (h *ProfileHandler) Recommendations(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.authorize(c, id); !ok {
		return
	}

	recs, err := h.profileServ.Recommendations(c.Request.Context(), id)
	if err != nil {
		h.respondProfileError(c, err, "recommend practices failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// authorize admits teachers, and parents whose profile token matches the
// path id. Reports whether the caller is a teacher.
func (h *ProfileHandler) authorize(c *gin.Context, profileID string) (bool, bool) {
	if _, ok := GetAuthClaims(c); ok {
		return true, true
	}
	if tokenProfileID, ok := GetProfileID(c); ok {
		if tokenProfileID == profileID {
			return false, true
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "token does not match profile"})
		c.Abort()
		return false, false
	}
	c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
	c.Abort()
	return false, false
}

func (h *ProfileHandler) respondProfileError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case errors.Is(err, service.ErrProfilerTypeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profiler type not found"})
	default:
		h.logger.Error(msg, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
