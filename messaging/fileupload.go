package messaging

import (
	"encoding/base64"
	"fmt"
)

// DecodedFile is the decoded payload handed to an on-file handler.
type DecodedFile struct {
	Bytes       []byte
	FileName    string
	ContentType string
}

// ErrInvalidFileUpload wraps a base64 decode failure. Per spec.md §4.6,
// invalid base64 must fail the handler with a user-visible error reply and
// must not be retried — callers should catch this, reply via
// UserMessageContext.ReplyAsync, and return nil rather than propagating the
// error to the engine.
type ErrInvalidFileUpload struct {
	FileName string
	Cause    error
}

func (e *ErrInvalidFileUpload) Error() string {
	return fmt.Sprintf("messaging: invalid file upload %q: %v", e.FileName, e.Cause)
}
func (e *ErrInvalidFileUpload) Unwrap() error { return e.Cause }

// DecodeFileUpload decodes a file-upload Payload per spec.md §4.6/§9: the
// canonical shape is the {content, fileName, contentType} object; a raw
// string payload (Payload.Text carrying content, with the filename in
// Payload.Hint) is accepted only as a backward-compatibility fallback.
func DecodeFileUpload(p Payload) (DecodedFile, error) {
	if p.FileUpload != nil {
		raw, err := base64.StdEncoding.DecodeString(p.FileUpload.Content)
		if err != nil {
			return DecodedFile{}, &ErrInvalidFileUpload{FileName: p.FileUpload.FileName, Cause: err}
		}
		return DecodedFile{Bytes: raw, FileName: p.FileUpload.FileName, ContentType: p.FileUpload.ContentType}, nil
	}

	// Fallback duck-typed shape: a raw string in Text, filename in Hint.
	raw, err := base64.StdEncoding.DecodeString(p.Text)
	if err != nil {
		return DecodedFile{}, &ErrInvalidFileUpload{FileName: p.Hint, Cause: err}
	}
	return DecodedFile{Bytes: raw, FileName: p.Hint}, nil
}
