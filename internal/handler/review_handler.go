package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/corplearn/corplearn-backend/internal/common"
	"github.com/corplearn/corplearn-backend/internal/domain"
	"github.com/corplearn/corplearn-backend/internal/middleware"
	"github.com/corplearn/corplearn-backend/internal/service"
)

// ReviewHandler exposes the review workflow over HTTP: submissions,
// review decisions, deletes and the audit trail, uniformly for lessons,
// news and meetings.
type ReviewHandler struct {
	svc service.ReviewService
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

func parseKind(c *gin.Context) (domain.EntityKind, bool) {
	kind, ok := domain.ParseEntityKind(c.Param("kind"))
	if !ok {
		common.ErrorResponse(c, http.StatusNotFound, "unknown content kind", nil)
		return "", false
	}
	return kind, true
}

// decodeSubmission binds the kind-specific payload. The visible flag rides
// along on any kind; it defaults to true on create and stays untouched on
// update when omitted.
func decodeSubmission(c *gin.Context, kind domain.EntityKind) (domain.Submission, *bool, error) {
	switch kind {
	case domain.KindLesson:
		var req struct {
			domain.LessonSubmission
			Visible *bool `json:"visible"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req.LessonSubmission, req.Visible, nil
	case domain.KindNews:
		var req struct {
			domain.NewsSubmission
			Visible *bool `json:"visible"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req.NewsSubmission, req.Visible, nil
	default:
		var req struct {
			domain.MeetingSubmission
			Visible *bool `json:"visible"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			return nil, nil, err
		}
		return &req.MeetingSubmission, req.Visible, nil
	}
}

// Submit handles POST /api/v1/:kind
func (h *ReviewHandler) Submit(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	sub, visible, err := decodeSubmission(c, kind)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "malformed request body", err)
		return
	}

	resp, err := h.svc.Submit(middleware.GetActor(c), service.SubmitInput{Content: sub, Visible: visible})
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Created(c, resp)
}

// Update handles PUT /api/v1/:kind/:uuid, submitting a new version of an
// existing entity.
func (h *ReviewHandler) Update(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}
	sub, visible, err := decodeSubmission(c, kind)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "malformed request body", err)
		return
	}

	resp, err := h.svc.Submit(middleware.GetActor(c), service.SubmitInput{
		EntityUUID: c.Param("uuid"),
		Content:    sub,
		Visible:    visible,
	})
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, resp)
}

// Detail handles GET /api/v1/:kind/:uuid
func (h *ReviewHandler) Detail(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	resp, err := h.svc.Detail(c.Param("uuid"), middleware.GetActor(c))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	if resp.Kind != kind {
		common.ErrorResponse(c, http.StatusNotFound, "resource not found", nil)
		return
	}
	common.Success(c, resp)
}

// List handles GET /api/v1/:kind, listing the actor's own entities.
func (h *ReviewHandler) List(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	responses, meta, err := h.svc.ListOwn(middleware.GetActor(c), kind, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessWithMeta(c, responses, meta)
}

// Delete handles DELETE /api/v1/:kind/:uuid
func (h *ReviewHandler) Delete(c *gin.Context) {
	if _, ok := parseKind(c); !ok {
		return
	}

	if err := h.svc.Delete(c.Param("uuid"), middleware.GetActor(c)); err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, gin.H{"deleted": true})
}

// History handles GET /api/v1/:kind/:uuid/history
func (h *ReviewHandler) History(c *gin.Context) {
	if _, ok := parseKind(c); !ok {
		return
	}

	records, err := h.svc.History(c.Param("uuid"), middleware.GetActor(c))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, records)
}

// ListPending handles GET /api/v1/admin/review/:kind, the review queue.
func (h *ReviewHandler) ListPending(c *gin.Context) {
	kind, ok := parseKind(c)
	if !ok {
		return
	}

	responses, meta, err := h.svc.ListPending(middleware.GetActor(c), kind, queryInt(c, "page", 1), queryInt(c, "limit", 20))
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.SuccessWithMeta(c, responses, meta)
}

// Review handles POST /api/v1/admin/review/versions/:uuid
func (h *ReviewHandler) Review(c *gin.Context) {
	var req struct {
		Decision string `json:"decision" binding:"required"`
		Comment  string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "malformed request body", err)
		return
	}

	auditor := middleware.GetActor(c)
	versionUUID := c.Param("uuid")

	var err error
	switch domain.ReviewDecision(req.Decision) {
	case domain.DecisionApproved:
		err = h.svc.Approve(versionUUID, auditor, req.Comment)
	case domain.DecisionRejected:
		err = h.svc.Reject(versionUUID, auditor, req.Comment)
	default:
		common.ErrorResponse(c, http.StatusBadRequest, "decision must be approved or rejected", nil)
		return
	}
	if err != nil {
		common.FailFromError(c, err)
		return
	}
	common.Success(c, gin.H{"decision": req.Decision})
}
