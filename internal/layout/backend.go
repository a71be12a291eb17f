package layout

// Output describes one physical display output enumerated by the windowing
// backend at startup.
type Output struct {
	Name   string
	Width  int32
	Height int32
}

// Backend is the engine's only outbound boundary to the windowing system.
// Outputs is read once at engine construction to create screens;
// ScheduleRepaint is a fire-and-forget signal issued at the end of every
// commit. Actual pixel composition happens asynchronously behind it.
type Backend interface {
	Outputs() []Output
	ScheduleRepaint(screen ScreenID)
}
