package model

import "errors"

var (
	ErrEmptyReference     = errors.New("media reference is empty")
	ErrPageUnreachable    = errors.New("viewer page unreachable")
	ErrNoViewer           = errors.New("no embedded viewer on page")
	ErrFetchFailed        = errors.New("image fetch failed")
	ErrBadStatus          = errors.New("image url returned non-OK status")
	ErrNotImage           = errors.New("url does not return an image")
	ErrEmptyBody          = errors.New("empty image data")
	ErrTooLarge           = errors.New("image exceeds size limit")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrAssetNotFound      = errors.New("media asset not found")
	ErrDuplicateOrigin    = errors.New("media asset with origin url already exists")
)
