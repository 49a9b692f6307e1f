package catalog

import "context"

type viewerContextKey struct{}

// WithViewer attaches the id of the user reading the catalog. Read paths
// use it to fill the per-viewer borrow flag on returned books; without it
// the flag stays false.
func WithViewer(ctx context.Context, viewerID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if viewerID == 0 {
		return ctx
	}
	return context.WithValue(ctx, viewerContextKey{}, viewerID)
}

// ViewerFromContext reports the viewer id attached by WithViewer, if any.
func ViewerFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	id, ok := ctx.Value(viewerContextKey{}).(int64)
	return id, ok && id != 0
}
