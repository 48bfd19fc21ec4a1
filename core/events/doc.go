// Package events provides a synchronous publish/subscribe bus keyed by event
// name, built on github.com/jilio/ebu.
//
// Every emit is published on ebu as a typed Message[T]. Handlers are
// registered per event name (or for every name with SubscribeAll) and are
// invoked in subscription order on the goroutine that calls Emit.
// Subscribing returns an unsubscribe function; a handler that unsubscribes
// while an emit is in progress is not called again.
//
// # Usage
//
//	bus := events.New[provider.Event]()
//	stop := bus.Subscribe("provider:added", func(name string, ev provider.Event) {
//		log.Info("added", zap.Any("object", ev.Object))
//	})
//	defer stop()
package events
