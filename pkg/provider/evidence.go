package provider

import (
	"context"
	"errors"
)

var (
	// ErrEvidenceNotFound is returned for an unknown evidence reference.
	ErrEvidenceNotFound = errors.New("evidence not found")
	// ErrEvidenceTooLarge is returned when an upload exceeds the size limit.
	ErrEvidenceTooLarge = errors.New("evidence too large")
)

// EvidenceStore keeps uploaded payment evidence and hands back an opaque
// reference to it.
type EvidenceStore interface {
	Put(ctx context.Context, contentType string, data []byte) (ref string, err error)
	Get(ctx context.Context, ref string) (contentType string, data []byte, err error)
}
