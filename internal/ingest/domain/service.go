package domain

import (
	"context"
	"errors"
	"io"

	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

type UploadRequest struct {
	Filename string
	Body     io.Reader
}

type ListUploadRequest struct {
	CustomerID string
	PageToken  string
	PageSize   int
}

type ListUploadResponse struct {
	pagination.PageInfo
	Uploads []UploadBatch `json:"uploads"`
}

type Service interface {
	Upload(context.Context, UploadRequest) (UploadResult, error)
	List(context.Context, ListUploadRequest) (ListUploadResponse, error)
}

var (
	ErrInvalidFilename = errors.New("invalid_filename")
	ErrEmptyFile       = errors.New("empty_file")
	ErrInvalidEncoding = errors.New("invalid_encoding")
	ErrMissingHeader   = errors.New("missing_header")
	ErrMissingColumns  = errors.New("missing_columns")
	ErrNoValidRows     = errors.New("no_valid_rows")

	ErrUploadInProgress = errors.New("upload_in_progress")
)
