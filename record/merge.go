package record

// MergeChunks folds per-chunk records into a single record. Later chunks
// never override earlier values:
//
//   - nested objects are merged recursively
//   - lists are concatenated in order with duplicates (by Signature) dropped
//   - scalars keep the first non-empty value seen
//
// The inputs are not modified. Merging an empty slice yields an empty record.
func MergeChunks(records []Record) Record {
	merged := Record{}
	for _, r := range records {
		mergeInto(merged, r)
	}
	return merged
}

// MergeAdditions folds the inference stage's proposed additions into a deep
// copy of the base record. Only lists under additions.entities.* and
// additions.processes.* are consulted; everything else in the additions
// record (qa_hints, notes, stray keys) is ignored. New items are appended
// after existing ones, with duplicates dropped by Signature.
func MergeAdditions(base Record, additions Record) Record {
	merged := base.Clone()
	if merged == nil {
		merged = Record{}
	}

	adds, ok := additions["additions"].(map[string]any)
	if !ok {
		return merged
	}

	for _, group := range []string{"entities", "processes"} {
		proposed, ok := adds[group].(map[string]any)
		if !ok {
			continue
		}

		target, ok := merged[group].(map[string]any)
		if !ok {
			target = map[string]any{}
			merged[group] = target
		}

		for key, v := range proposed {
			items, ok := v.([]any)
			if !ok {
				continue
			}
			existing, ok := target[key].([]any)
			if !ok && target[key] != nil {
				// Base holds a non-list under this key; leave it alone.
				continue
			}
			target[key] = extendUnique(existing, items)
		}
	}

	return merged
}

func mergeInto(dst map[string]any, src map[string]any) {
	for k, v := range src {
		cur, exists := dst[k]
		if !exists {
			dst[k] = cloneValue(v)
			continue
		}

		switch sv := v.(type) {
		case map[string]any:
			if cm, ok := cur.(map[string]any); ok {
				mergeInto(cm, sv)
				continue
			}
		case []any:
			if cl, ok := cur.([]any); ok {
				dst[k] = extendUnique(cl, sv)
				continue
			}
		}

		// Scalar or type conflict: first non-empty value wins.
		if isEmptyValue(cur) && !isEmptyValue(v) {
			dst[k] = cloneValue(v)
		}
	}
}

// extendUnique appends items to target, skipping any whose signature already
// appears in target or earlier in items. Target is not modified in place.
func extendUnique(target []any, items []any) []any {
	seen := make(map[string]struct{}, len(target)+len(items))
	for _, it := range target {
		seen[Signature(it)] = struct{}{}
	}

	out := make([]any, len(target), len(target)+len(items))
	copy(out, target)
	for _, it := range items {
		sig := Signature(it)
		if _, dup := seen[sig]; dup {
			continue
		}
		seen[sig] = struct{}{}
		out = append(out, cloneValue(it))
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, val := range tv {
			out[k] = cloneValue(val)
		}
		return out
	case []any:
		out := make([]any, len(tv))
		for i, val := range tv {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

func isEmptyValue(v any) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case []any:
		return len(tv) == 0
	case map[string]any:
		return len(tv) == 0
	}
	return false
}
