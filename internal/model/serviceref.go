package model

import (
	"encoding/json"
	"strings"
)

// ServiceRef is a barter offer/need entry that may arrive as either a plain
// string or a full service object. Decoding normalizes both shapes here so
// matching code never branches on shape again.
type ServiceRef struct {
	Name string       `json:"name"`
	Item *ServiceItem `json:"item,omitempty"`
}

// PlainRef builds a ServiceRef from free text.
func PlainRef(name string) ServiceRef {
	return ServiceRef{Name: strings.TrimSpace(name)}
}

// ItemRef builds a ServiceRef backed by a full service item.
func ItemRef(item ServiceItem) ServiceRef {
	return ServiceRef{Name: item.Name, Item: &item}
}

// UnmarshalJSON accepts either `"plumbing works"` or a ServiceItem object.
func (r *ServiceRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = PlainRef(s)
		return nil
	}

	var item ServiceItem
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*r = ItemRef(item)
	return nil
}

// MarshalJSON keeps plain-text refs as JSON strings and item-backed refs as
// objects, round-tripping the stored shape.
func (r ServiceRef) MarshalJSON() ([]byte, error) {
	if r.Item == nil {
		return json.Marshal(r.Name)
	}
	return json.Marshal(r.Item)
}

// RefNames returns the display names of a ref list, skipping blanks.
func RefNames(refs []ServiceRef) []string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}
	return names
}
