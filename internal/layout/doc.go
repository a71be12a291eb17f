// Package layout implements the scene-graph layout engine for the stratum
// compositing display server. It manages three kinds of entities - screens,
// layers, and surfaces - each carrying a committed property set and a pending
// property set. Setter calls stage changes into the pending set; nothing
// becomes visible until Commit promotes all pending state, rebuilds order
// lists and derived transforms, dispatches property notifications, and
// requests a repaint from the windowing backend.
//
// The engine is single-threaded by design: one logical writer drives setters
// and Commit, typically from an event loop. Callers that need concurrent
// access must serialize externally (see internal/daemon).
package layout
