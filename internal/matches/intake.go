package matches

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"resume-match/internal/shared/storage/object"
	"resume-match/internal/shared/util"
)

// MaxUploadSize caps a single resume upload.
const MaxUploadSize = 10 << 20 // 10MB

// Upload is a file received from the client.
type Upload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// Submission is a validated upload that has been staged in the object store.
type Submission struct {
	OwnerID          string
	StoredFileName   string
	OriginalFileName string
	ContentType      string
	Bytes            []byte
	JobDescription   string
}

// Intake validates uploads and stages them for analysis.
type Intake struct {
	Store   object.Store
	MaxSize int64
}

// Accept validates the file and job description and writes the file to the
// staging store. The missing file check runs first so callers see one error.
func (in *Intake) Accept(ctx context.Context, file *Upload, jobDescription string, req Requester) (Submission, error) {
	if file == nil || file.Body == nil {
		return Submission{}, ErrMissingFile
	}
	if strings.TrimSpace(jobDescription) == "" {
		return Submission{}, ErrMissingJobDescription
	}
	if strings.TrimSpace(req.ID) == "" {
		return Submission{}, fmt.Errorf("%w: requester id is required", ErrInvalidInput)
	}

	limit := in.MaxSize
	if limit <= 0 {
		limit = MaxUploadSize
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, limit+1))
	if err != nil {
		return Submission{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return Submission{}, ErrMissingFile
	}
	if int64(len(data)) > limit {
		return Submission{}, ErrFileTooLarge
	}

	stored, err := in.Store.Save(ctx, req.ID, file.FileName, bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, util.ErrInvalidFileName) {
			return Submission{}, ErrInvalidFileName
		}
		return Submission{}, fmt.Errorf("stage upload: %w", err)
	}

	contentType := strings.TrimSpace(file.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = stored.ContentType
	}
	return Submission{
		OwnerID:          req.ID,
		StoredFileName:   stored.Key,
		OriginalFileName: strings.TrimSpace(file.FileName),
		ContentType:      contentType,
		Bytes:            data,
		JobDescription:   jobDescription,
	}, nil
}
