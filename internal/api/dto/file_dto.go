package dto

// FileUploadResponse lists stored attachment URLs, comma-joined.
type FileUploadResponse struct {
	Message   string `json:"message"`
	URLs      string `json:"urls"`
	FileCount int    `json:"file_count"`
}
