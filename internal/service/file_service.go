package service

import (
	"context"
	"mime/multipart"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/reimbursement-service/internal/storage"
	apperrors "github.com/spec-kit/reimbursement-service/pkg/util/errorutil"
)

// UploadResult lists the public URLs of accepted attachments.
type UploadResult struct {
	URLs []string
}

// Joined returns the URLs separated by commas, the form stored on tickets.
func (r *UploadResult) Joined() string {
	return strings.Join(r.URLs, ",")
}

// FileService accepts ticket attachments.
type FileService struct {
	disk   *storage.Disk
	logger *zap.Logger
}

// NewFileService constructs the service.
func NewFileService(disk *storage.Disk, logger *zap.Logger) *FileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileService{disk: disk, logger: logger}
}

// Upload stores every acceptable file. Files with a disallowed extension, over
// the size cap, or that fail to write are skipped; the call fails only when
// nothing was stored.
func (s *FileService) Upload(ctx context.Context, files []*multipart.FileHeader) (*UploadResult, error) {
	if len(files) == 0 {
		return nil, apperrors.NewFileUploadError("No files uploaded", nil)
	}

	result := &UploadResult{}
	rejected := []string{}
	for _, fh := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		url, err := s.save(fh)
		if err != nil {
			s.logger.Warn("attachment skipped", zap.String("file", fh.Filename), zap.Int64("size", fh.Size), zap.Error(err))
			rejected = append(rejected, fh.Filename)
			continue
		}
		result.URLs = append(result.URLs, url)
	}

	if len(result.URLs) == 0 {
		return nil, apperrors.NewFileUploadError("File upload failed", map[string]any{"rejected": rejected})
	}
	s.logger.Info("attachments stored", zap.Int("accepted", len(result.URLs)), zap.Int("rejected", len(rejected)))
	return result, nil
}

func (s *FileService) save(fh *multipart.FileHeader) (string, error) {
	if err := s.disk.Validate(fh.Filename, fh.Size); err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	return s.disk.Save(fh.Filename, f)
}
