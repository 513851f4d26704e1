package polygon

// Error types attached to errors returned by this package. Check them with
// errors.IsType from github.com/aukilabs/go-tooling/pkg/errors.
const (
	// ErrTypeInvalidPolygon marks malformed input rejected at construction:
	// fewer than three points, a non-unit normal or a degenerate quad.
	ErrTypeInvalidPolygon = "invalid_polygon"

	// ErrTypeGeometryInvariant marks a split that could not find exactly two
	// plane crossings. The input was either not SPLIT or not convex.
	ErrTypeGeometryInvariant = "geometry_invariant_violation"
)
