package codec

import (
	"fmt"

	"github.com/google/uuid"
)

// UUID maps a string to uuid.UUID. Encoding accepts uuid.UUID or a parseable
// string and always emits the canonical lower-case form.
func UUID() Codec {
	return Funcs{
		To: func(v any) (any, error) {
			switch u := v.(type) {
			case uuid.UUID:
				return u.String(), nil
			case string:
				id, err := uuid.Parse(u)
				if err != nil {
					return nil, err
				}
				return id.String(), nil
			default:
				return nil, fmt.Errorf("expected uuid.UUID, got %T", v)
			}
		},
		From: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("expected string, got %T", v)
			}
			return uuid.Parse(s)
		},
	}
}
