package notifications

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/pkg/response"
	apperrors "github.com/openlore/lorebase/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func currentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		response.Unauthorized(c, "Authentication required", "AUTH_FAILED")
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		response.Unauthorized(c, "Invalid user context", "AUTH_FAILED")
		return primitive.NilObjectID, false
	}
	return oid, true
}

// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.PaginatedResponse
// @Router /notifications [get]
func (h *Handler) ListNotifications(c *gin.Context) {
	var query NotificationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, total, err := h.repo.ListByRecipient(c.Request.Context(), userID, query.UnreadOnly, query.Page, query.Limit)
	if err != nil {
		response.InternalServerError(c, "Failed to list notifications", "DATABASE_ERROR")
		return
	}
	if items == nil {
		items = []Notification{}
	}

	response.Paginated(c, items, total, query.Limit, query.Page)
}

// @Summary Unread count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /notifications/unread-count [get]
func (h *Handler) GetUnreadCount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.repo.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to count notifications", "DATABASE_ERROR")
		return
	}

	response.Success(c, UnreadCountResponse{UnreadCount: count})
}

// @Summary Mark notification read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param id path string true "Notification ID"
// @Success 200 {object} response.SuccessResponse
// @Router /notifications/{id}/read [post]
func (h *Handler) MarkRead(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid notification ID", "INVALID_ID")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			response.NotFound(c, "Notification not found", "NOT_FOUND")
		} else {
			response.InternalServerError(c, "Failed to update notification", "DATABASE_ERROR")
		}
		return
	}

	response.Success(c, gin.H{"id": id, "isRead": true})
}

// @Summary Mark all read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.SuccessResponse
// @Router /notifications/read-all [post]
func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	count, err := h.repo.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Failed to update notifications", "DATABASE_ERROR")
		return
	}

	response.Success(c, MarkAllReadResponse{MarkedCount: count})
}

// @Summary Register device token
// @Description Register an FCM device token for push notifications
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RegisterDeviceRequest true "Device token"
// @Success 200 {object} response.SuccessResponse
// @Router /notifications/devices [post]
func (h *Handler) RegisterDevice(c *gin.Context) {
	var req RegisterDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request", "INVALID_JSON")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.repo.RegisterDevice(c.Request.Context(), userID, req.Token); err != nil {
		response.InternalServerError(c, "Failed to register device", "DATABASE_ERROR")
		return
	}

	response.Success(c, gin.H{"registered": true})
}
