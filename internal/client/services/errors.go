package services

import "errors"

var (
	ErrNoDraft          = errors.New("no draft is open")
	ErrDraftOpen        = errors.New("a draft is already open")
	ErrNoteNotFound     = errors.New("note not found")
	ErrNoteBusy         = errors.New("note is open for editing")
	ErrUnsupportedMedia = errors.New("unsupported media type")
	ErrMediaNotFound    = errors.New("media not found in draft")
	ErrEmptyUpload      = errors.New("upload has no data")
	ErrArchivedPin      = errors.New("archived notes cannot be pinned")
)
