package review

import (
	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	runner *Runner
	repo   *Repository
}

func NewHandler(runner *Runner, repo *Repository) *Handler {
	return &Handler{
		runner: runner,
		repo:   repo,
	}
}

func taskResponse(h *TaskHandle) TaskResponse {
	return TaskResponse{
		TaskID:    h.ID,
		ContentID: h.ContentID.Hex(),
		Status:    h.Status(),
	}
}

// @Summary Submit content for review
// @Description Queue one content item for automated review
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Param type query string true "Content type" Enums(knowledge, persona)
// @Success 202 {object} response.SuccessResponse
// @Router /review/contents/{id} [post]
func (h *Handler) SubmitReview(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid content ID", "INVALID_ID")
		return
	}

	contentType := c.Query("type")
	if contentType != "" && contentType != "knowledge" && contentType != "persona" {
		response.BadRequest(c, "Invalid content type", "INVALID_TYPE")
		return
	}

	handle := h.runner.Submit(id, contentType)
	response.Accepted(c, taskResponse(handle))
}

// @Summary Submit a batch for review
// @Description Fan a list of content IDs out into independent review tasks
// @Tags review
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BatchReviewRequest true "Batch details"
// @Success 202 {object} response.SuccessResponse
// @Router /review/batch [post]
func (h *Handler) SubmitBatch(c *gin.Context) {
	var req BatchReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request", "INVALID_JSON")
		return
	}

	ids := make([]primitive.ObjectID, 0, len(req.ContentIDs))
	for _, raw := range req.ContentIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			response.BadRequest(c, "Invalid content ID: "+raw, "INVALID_ID")
			return
		}
		ids = append(ids, id)
	}

	handles := h.runner.SubmitBatch(ids, req.ContentType)

	tasks := make([]TaskResponse, 0, len(handles))
	for _, handle := range handles {
		tasks = append(tasks, taskResponse(handle))
	}

	response.Accepted(c, BatchReviewResponse{
		Tasks: tasks,
		Total: len(tasks),
	})
}

// @Summary Get task state
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 200 {object} response.SuccessResponse
// @Router /review/tasks/{id} [get]
func (h *Handler) GetTask(c *gin.Context) {
	handle, ok := h.runner.Task(c.Param("id"))
	if !ok {
		response.NotFound(c, "Task not found", "NOT_FOUND")
		return
	}

	body := gin.H{
		"taskId":    handle.ID,
		"contentId": handle.ContentID.Hex(),
		"status":    handle.Status(),
	}

	if outcome, err := handle.Result(); err != nil {
		body["error"] = err.Error()
	} else if outcome != nil {
		if outcome.Terminal() {
			// Precondition violations surface as an explicit error
			// payload, never as a stack trace.
			body["error"] = ReasonMessage(outcome.Reason)
			body["reason"] = outcome.Reason
		} else {
			body["decision"] = outcome.Decision
			body["confidence"] = outcome.Confidence
			body["reportId"] = outcome.ReportID.Hex()
		}
	}

	response.Success(c, body)
}

// @Summary Get a review report
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Report ID"
// @Param rendered query bool false "Include the human-readable rendering"
// @Success 200 {object} response.SuccessResponse
// @Router /review/reports/{id} [get]
func (h *Handler) GetReport(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid report ID", "INVALID_ID")
		return
	}

	report, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load report", "DATABASE_ERROR")
		return
	}
	if report == nil {
		response.NotFound(c, "Report not found", "NOT_FOUND")
		return
	}

	h.respondReport(c, report)
}

// @Summary Get the latest report for a content item
// @Tags review
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Param rendered query bool false "Include the human-readable rendering"
// @Success 200 {object} response.SuccessResponse
// @Router /review/contents/{id}/report [get]
func (h *Handler) GetContentReport(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid content ID", "INVALID_ID")
		return
	}

	report, err := h.repo.GetLatestByContent(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load report", "DATABASE_ERROR")
		return
	}
	if report == nil {
		response.NotFound(c, "No report for this content", "NOT_FOUND")
		return
	}

	h.respondReport(c, report)
}

func (h *Handler) respondReport(c *gin.Context, report *Report) {
	if c.Query("rendered") == "true" {
		response.Success(c, gin.H{
			"report":   report,
			"rendered": RenderReport(report),
		})
		return
	}
	response.Success(c, report)
}
