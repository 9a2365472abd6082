package warp

// FrameScheduler coalesces render requests per frame. Any number of
// geometry mutations before the next frame trigger exactly one re-render,
// not one per mutation.
//
// The scheduler is cooperative and single-threaded: mutation handlers call
// Invalidate, the frame driver calls Flush once per frame. No lock is
// needed because drag updates and render passes never interleave; a
// multi-threaded driver must add its own synchronization or confine the
// scheduler to one goroutine.
type FrameScheduler struct {
	requested uint64
	flushed   uint64
}

// Invalidate records a render request. Cheap enough to call on every
// mutation event.
func (s *FrameScheduler) Invalidate() {
	s.requested++
}

// Pending reports whether a render request is outstanding.
func (s *FrameScheduler) Pending() bool {
	return s.requested != s.flushed
}

// Flush runs render once if any request is pending, marking all pending
// requests as satisfied. Returns whether render ran.
func (s *FrameScheduler) Flush(render func()) bool {
	if s.requested == s.flushed {
		return false
	}
	s.flushed = s.requested
	render()
	return true
}
