package confloader

import "errors"

// mapProvider adapts a literal map to koanf's provider interface.
// Only Read is meaningful; koanf calls whichever the provider offers.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map provider has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
