// internal/domain/address/entity.go
package address

import "strings"

// Components holds the best-effort pieces of a free-text Vietnamese address.
// Ward, District and Province keep the casing the customer typed; an empty
// field means "unknown", never "invalid".
type Components struct {
	Original    string `json:"original"`
	Normalized  string `json:"normalized"`
	HouseNumber string `json:"house_number"`
	Ward        string `json:"ward"`
	District    string `json:"district"`
	Province    string `json:"province"`
}

// IsHanoi reports whether the parsed province is Hà Nội.
func (c Components) IsHanoi() bool {
	return Normalize(c.Province) == "hà nội"
}

// Join concatenates the non-empty parts as "a, b". It returns an empty string
// when any part is empty so combined search terms are only built from fully
// known components.
func Join(parts ...string) string {
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return ""
		}
	}
	return strings.Join(parts, ", ")
}
