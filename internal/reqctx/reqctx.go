// Package reqctx tags a context with a per-inspection identifier so log
// lines from the fetch, extraction and resolution stages of one inspection
// can be correlated.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

type key int

const inspectionKey key = 0

// InspectionContext identifies one running inspection.
type InspectionContext struct {
	InspectionID string
	StartTime    time.Time
}

// WithInspection derives a context carrying a fresh inspection identifier.
func WithInspection(ctx context.Context) context.Context {
	return context.WithValue(ctx, inspectionKey, &InspectionContext{
		InspectionID: generateID(),
		StartTime:    time.Now(),
	})
}

// Get returns the inspection identity from ctx, or a placeholder when the
// context was not tagged.
func Get(ctx context.Context) *InspectionContext {
	if ic, ok := ctx.Value(inspectionKey).(*InspectionContext); ok {
		return ic
	}
	return &InspectionContext{
		InspectionID: "unknown",
		StartTime:    time.Now(),
	}
}

func generateID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
