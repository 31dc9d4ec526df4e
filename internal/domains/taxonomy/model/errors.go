package model

import "errors"

var (
	ErrTermNotFound      = errors.New("term not found")
	ErrAttributeNotFound = errors.New("attribute not found")
	ErrEmptyTermName     = errors.New("term name is empty")
)
