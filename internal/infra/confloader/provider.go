// Package confloader provides configuration loading mechanism.
package confloader

import "errors"

// errNoBytes is returned by ReadBytes; override maps have no raw form.
var errNoBytes = errors.New("confloader: map overrides have no byte form")

// mapProvider feeds overrides such as CLI flags to koanf. Keys holding nil
// are dropped so an unset override never masks the file or env layers.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errNoBytes
}

// Read returns a copy of the overrides without nil values.
func (m mapProvider) Read() (map[string]any, error) {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if v != nil {
			out[k] = v
		}
	}
	return out, nil
}
