// Package provider keeps a keyed collection of objects in sync with a remote
// endpoint.
//
// A Provider fetches a resource through a Fetcher, decodes the body according
// to its content type and reconciles the result into its collection:
//
//   - a JSON array is treated as a full snapshot: each element is added or
//     replaced and every key missing from the snapshot is deleted (mark and
//     sweep);
//   - any other body is a single object that is added or replaced.
//
// Each pass emits provider:started, then zero or more provider:added,
// provider:changed and provider:deleted events, and finally exactly one of
// provider:completed or provider:error. Events are delivered synchronously on an
// events.Bus once the whole pass is applied, so a deleted listener already sees
// the collection without any of the removed keys. Listeners may read the
// collection and may start a new pass from inside the handler.
//
// # Objects and keys
//
// Objects are built by a Constructor. Plain keeps the decoded JSON value, while
// ModelConstructor casts every element into a model.Instance. Identity comes
// from a KeyFunc, by default the "key" field of the object. Objects without a
// key are announced as added but never stored.
//
// # Overlapping passes
//
// The network call runs without holding any lock, so passes started by Request,
// FetchOnce and the repeating timer may overlap. Applying results is serialized
// and ordered by pass start: a result from a pass that started before the last
// applied one is discarded and reported as completed without changes.
//
// # Usage
//
//	p := provider.New(
//		provider.WithOrigin("https://api.example.com"),
//		provider.WithConstructor(provider.ModelConstructor(reg, "User")),
//		provider.WithLogger(log),
//	)
//	p.On(provider.EventAdded, func(_ string, ev provider.Event) {
//		fmt.Println("added", ev.Object)
//	})
//	changed, err := p.FetchOnce(ctx, "/users", provider.Request{})
package provider
