package contents

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/openlore/lorebase/internal/config"
	"github.com/openlore/lorebase/internal/pkg/cloudinary"
	"github.com/openlore/lorebase/internal/pkg/response"
	apperrors "github.com/openlore/lorebase/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Handler struct {
	repo *Repository
	cld  *cloudinary.Service
	cfg  *config.Config
}

func NewHandler(repo *Repository, cld *cloudinary.Service, cfg *config.Config) *Handler {
	return &Handler{
		repo: repo,
		cld:  cld,
		cfg:  cfg,
	}
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

// @Summary Submit content
// @Description Submit a knowledge article or persona card for review
// @Tags contents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateContentRequest true "Content details"
// @Success 201 {object} response.SuccessResponse
// @Router /contents [post]
func (h *Handler) CreateContent(c *gin.Context) {
	var req CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request", "INVALID_JSON")
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	content := &Content{
		OwnerID:     ownerID,
		Type:        req.Type,
		Title:       req.Title,
		Description: req.Description,
		Body:        req.Body,
	}

	if err := h.repo.Create(c.Request.Context(), content); err != nil {
		response.InternalServerError(c, "Failed to create content", "DATABASE_ERROR")
		return
	}

	response.Created(c, content)
}

// @Summary Get content
// @Tags contents
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Success 200 {object} response.SuccessResponse
// @Router /contents/{id} [get]
func (h *Handler) GetContent(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid content ID", "INVALID_ID")
		return
	}

	content, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load content", "DATABASE_ERROR")
		return
	}
	if content == nil {
		response.NotFound(c, "Content not found", "NOT_FOUND")
		return
	}

	// Non-public content is only visible to its owner
	if !content.IsPublic() {
		ownerID, ok := currentUserID(c)
		if !ok {
			return
		}
		if ownerID != content.OwnerID {
			response.NotFound(c, "Content not found", "NOT_FOUND")
			return
		}
	}

	response.Success(c, content)
}

// @Summary List my submissions
// @Tags contents
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status"
// @Success 200 {object} response.PaginatedResponse
// @Router /contents/mine [get]
func (h *Handler) ListMyContents(c *gin.Context) {
	var query ContentListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters", "INVALID_QUERY")
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	items, total, err := h.repo.ListByOwner(c.Request.Context(), ownerID, query.Status, query.Page, query.Limit)
	if err != nil {
		response.InternalServerError(c, "Failed to list contents", "DATABASE_ERROR")
		return
	}
	if items == nil {
		items = []Content{}
	}

	response.Paginated(c, items, total, query.Limit, query.Page)
}

// @Summary Attach a file
// @Description Upload an attachment to a pending submission
// @Tags contents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Content ID"
// @Param file formData file true "File to attach"
// @Success 200 {object} response.SuccessResponse
// @Router /contents/{id}/files [post]
func (h *Handler) AttachFile(c *gin.Context) {
	if h.cld == nil {
		response.ServiceUnavailable(c, "File storage is not configured", "STORAGE_UNAVAILABLE")
		return
	}

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid content ID", "INVALID_ID")
		return
	}

	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	content, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.InternalServerError(c, "Failed to load content", "DATABASE_ERROR")
		return
	}
	if content == nil || content.OwnerID != ownerID {
		response.NotFound(c, "Content not found", "NOT_FOUND")
		return
	}
	if !content.IsPending() {
		response.Conflict(c, "Only pending content can be modified", "NOT_PENDING")
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, "File is required", "MISSING_FILE")
		return
	}
	defer file.Close()

	if err := cloudinary.ValidateAttachment(header); err != nil {
		response.BadRequest(c, err.Error(), "INVALID_FILE")
		return
	}

	result, err := h.cld.Upload(c.Request.Context(), file, header.Filename)
	if err != nil {
		response.InternalServerError(c, "Failed to upload file", "UPLOAD_FAILED")
		return
	}

	attached := File{
		Name:     header.Filename,
		Mime:     header.Header.Get("Content-Type"),
		Size:     result.FileSize,
		URL:      result.URL,
		PublicID: result.PublicID,
	}

	if err := h.repo.AddFile(c.Request.Context(), id, attached); err != nil {
		if errors.Is(err, apperrors.ErrNotPending) {
			response.Conflict(c, "Only pending content can be modified", "NOT_PENDING")
		} else {
			response.InternalServerError(c, "Failed to attach file", "DATABASE_ERROR")
		}
		return
	}

	response.Success(c, attached)
}
