package portalcast

import "errors"

// Sentinel error kinds, per the build-time error taxonomy. Out-of-draw-budget
// conditions are not errors (they are a defined fallback handled silently by
// the tracer and renderer); only build-time geometry/capacity problems are
// surfaced as errors.
var (
	// ErrDegenerate is returned when a line DTO describes a zero-length
	// linedef (v0 and v1 resolve to the same vertex).
	ErrDegenerate = errors.New("portalcast: degenerate linedef")

	// ErrNoOpenSector is returned by UpdateSectorLines/EndSector when no
	// sector is open on the builder's stack.
	ErrNoOpenSector = errors.New("portalcast: no sector is open")

	// ErrUnclosedSector is returned by EndSector when the sector's batch
	// of lines does not form a closed loop.
	ErrUnclosedSector = errors.New("portalcast: sector line batch is not closed")

	// ErrLightCapacity is returned by AddLight once the level holds
	// MaxLights lights; the caller receives invalidHandle (-1).
	ErrLightCapacity = errors.New("portalcast: level light capacity exceeded")

	// ErrSegmentLightCapacity marks a segment that already holds
	// MaxLightsPerSurface lights; the extra attachment is silently dropped.
	ErrSegmentLightCapacity = errors.New("portalcast: segment light capacity exceeded")

	// ErrSectorHistoryExceeded marks a ray walk that revisited more
	// sectors than MaxSectorHistory allows; the tracer stops silently
	// and the column is finished with whatever intersections it has.
	ErrSectorHistoryExceeded = errors.New("portalcast: sector history exceeded")

	// ErrIntersectionBudgetExceeded marks a column whose intersection
	// list reached MaxLineHitsPerColumn; the tracer stops silently.
	ErrIntersectionBudgetExceeded = errors.New("portalcast: intersection budget exceeded")

	// ErrInvalidLinedef is returned by FindLinedef when no linedef joins
	// the two given points, and by SetMiddleTexture when the given handle
	// does not resolve to a linedef in the level.
	ErrInvalidLinedef = errors.New("portalcast: invalid linedef handle")

	// ErrInvalidLineBatch is returned by UpdateSectorLines when an APPEND
	// sentinel is used on the first line of a batch (there is no
	// previous line's v1 to reuse) or a sentinel is used on the wrong
	// endpoint (FINISH on V0, APPEND on V1). A FINISH on the first line
	// closes that line onto its own V0 and fails with ErrDegenerate.
	ErrInvalidLineBatch = errors.New("portalcast: invalid line batch sentinel")
)
