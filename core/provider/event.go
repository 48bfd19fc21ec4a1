package provider

// Event names emitted by a provider.
const (
	EventStarted   = "provider:started"
	EventCompleted = "provider:completed"
	EventError     = "provider:error"
	EventAdded     = "provider:added"
	EventChanged   = "provider:changed"
	EventDeleted   = "provider:deleted"
)

// Event is the payload of every provider event. Only the fields relevant to
// Type are set.
type Event struct {
	Type   string
	Sender *Provider
	// PassID identifies the pass that emitted the event.
	PassID string
	// URL is set on started, completed and error events.
	URL string
	// Changed is set on completed events.
	Changed bool
	// Err is set on error events.
	Err error
	// Object is the new object for added and changed, or the removed one for
	// deleted.
	Object any
	// Existing is the replaced object on changed events.
	Existing any
}
