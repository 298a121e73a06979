package domain

import "context"

// MediaClock exposes the media playback collaborator consulted by the time
// containment clamp and by block/page activation.
type MediaClock interface {
	// Duration returns the media duration in seconds.
	Duration() float64
	// SeekTo moves the playhead to the given time in seconds.
	SeekTo(time float64)
}

// StaticMediaClock is a fixed-duration clock for tests and headless hosts.
type StaticMediaClock struct {
	Length   float64
	Position float64
}

// Duration returns the configured media length.
func (c *StaticMediaClock) Duration() float64 { return c.Length }

// SeekTo records the requested position.
func (c *StaticMediaClock) SeekTo(time float64) { c.Position = time }

// DefaultsProvider fetches externally-derived schema defaults, such as the
// intrinsic dimensions of a referenced vector asset. Implementations are
// best-effort: a failure is downgraded by the caller and validation proceeds
// with whatever defaults were already present.
type DefaultsProvider interface {
	FetchDefaults(ctx context.Context, url string) (map[string]any, error)
}
