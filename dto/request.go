package dto

import "mime/multipart"

// StatementUploadRequest represents the incoming statement batch
type StatementUploadRequest struct {
	Files    []*multipart.FileHeader `form:"files[]" binding:"required"`
	Metadata string                  `form:"metadata"`
}

// Validate performs basic validation on the request
func (r *StatementUploadRequest) Validate() error {
	if len(r.Files) == 0 {
		return ErrNoFiles
	}
	return nil
}

type DocumentMeta struct {
	Filename string `json:"filename"`
	Password string `json:"password,omitempty"`
}

type UploadMetadata struct {
	Documents []DocumentMeta `json:"documents"`
}

// PasswordFor returns the password declared for filename, if any.
func (m UploadMetadata) PasswordFor(filename string) string {
	for _, doc := range m.Documents {
		if doc.Filename == filename {
			return doc.Password
		}
	}
	return ""
}

type ExcludePolicyRequest struct {
	Excluded bool `json:"excluded"`
}
