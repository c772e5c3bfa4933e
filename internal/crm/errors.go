package crm

import "errors"

// ErrNotFound is returned when a requested record does not exist.
// Callers that treat absence as a normal condition should check for it
// with errors.Is.
var ErrNotFound = errors.New("record not found")
