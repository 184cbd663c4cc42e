package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/reimbursement-service/internal/api/dto"
	"github.com/spec-kit/reimbursement-service/internal/service"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

const attachmentField = "files"

// FilesHandler accepts ticket attachments.
type FilesHandler struct {
	files *service.FileService
}

func NewFilesHandler(files *service.FileService) *FilesHandler {
	return &FilesHandler{files: files}
}

// UploadTicketAttachment POST /api/files/tickets/attachment.
func (h *FilesHandler) UploadTicketAttachment(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperrors.NewFileUploadError("No files uploaded", nil)
	}

	result, err := h.files.Upload(c.UserContext(), form.File[attachmentField])
	if err != nil {
		return err
	}
	return ok(c, dto.FileUploadResponse{
		Message:   "Files uploaded successfully",
		URLs:      result.Joined(),
		FileCount: len(result.URLs),
	})
}
