package factory

import (
	fab "github.com/Goldziher/fabricator"
)

// NewSubscription builds a T with generated field values; customData maps
// field names to fixed values.
func NewSubscription[T any](customData ...map[string]any) T {
	instance := fab.New(*new(T))

	return instance.Build(customData...)
}
