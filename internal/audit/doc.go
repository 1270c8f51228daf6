// Package audit delivers token lifecycle events to a Sink off the request
// path.
//
// The Dispatcher buffers events in a channel drained by one goroutine. When
// the buffer is full it either drops the event and counts it, or blocks the
// caller until there is room, the context ends, or the dispatcher closes.
// Which events to emit is decided by the Engine.
package audit
