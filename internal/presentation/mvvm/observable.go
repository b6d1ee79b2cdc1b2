// Package mvvm holds the building blocks view-models share: property change
// notification, tag-driven validation, a notification sink for transient
// user messages and CRUD helpers that turn data-access failures into those
// messages.
package mvvm

import (
	"slices"
	"sync"
)

// PropertyChangedHandler is called with the name of a changed property.
type PropertyChangedHandler func(name string)

// Observable notifies subscribers when a property changes. The zero value
// is ready to use.
type Observable struct {
	mu       sync.Mutex
	handlers map[int]PropertyChangedHandler
	next     int
}

// OnPropertyChanged subscribes h and returns a function that unsubscribes it.
func (o *Observable) OnPropertyChanged(h PropertyChangedHandler) func() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.handlers == nil {
		o.handlers = make(map[int]PropertyChangedHandler)
	}
	id := o.next
	o.next++
	o.handlers[id] = h

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.handlers, id)
	}
}

// RaisePropertyChanged notifies every subscriber that name changed.
// Handlers run in subscription order, outside the lock.
func (o *Observable) RaisePropertyChanged(name string) {
	o.mu.Lock()
	ids := make([]int, 0, len(o.handlers))
	for id := range o.handlers {
		ids = append(ids, id)
	}
	handlers := make([]PropertyChangedHandler, 0, len(ids))
	slices.Sort(ids)
	for _, id := range ids {
		handlers = append(handlers, o.handlers[id])
	}
	o.mu.Unlock()

	for _, h := range handlers {
		h(name)
	}
}

// SetProperty stores value in field and raises a change for name, but only
// when the value differs. It reports whether anything changed.
func SetProperty[T comparable](o *Observable, field *T, value T, name string) bool {
	if *field == value {
		return false
	}
	*field = value
	o.RaisePropertyChanged(name)
	return true
}

