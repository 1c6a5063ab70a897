// Package record holds the structured pathway records produced by the
// extraction stages and the merge operations that combine them.
package record

import (
	"encoding/json"
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

// Record is a decoded JSON object describing part of a pathway. The model
// output is schema-free at this layer: stages decode into a generic map and
// downstream consumers pick out the sections they understand.
type Record map[string]any

// Clone returns a deep copy of the record. The copy shares no mutable
// state with the original.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	var out Record
	if err := deepcopy.Copy(&out, r); err != nil {
		// Records come from json.Unmarshal and are always plain
		// maps/slices/scalars, which deepcopy handles. Fall back to a
		// JSON round-trip if something exotic slipped in.
		data, merr := json.Marshal(r)
		if merr != nil {
			return Record{}
		}
		out = Record{}
		_ = json.Unmarshal(data, &out)
	}
	return out
}

// Section returns the nested object at the given key path, or nil if any
// step is missing or not an object.
func (r Record) Section(path ...string) map[string]any {
	cur := map[string]any(r)
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}

// Signature returns a canonical string identity for a list item. Items with
// equal signatures are considered duplicates during merging.
//
// Canonical JSON is used when the item serializes (map keys are emitted in
// sorted order, so key order never affects identity). Items that cannot be
// serialized fall back to their formatted value, which keeps merging total.
func Signature(item any) string {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprintf("%v", item)
	}
	return string(data)
}
