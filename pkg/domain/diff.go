package domain

import (
	"reflect"
	"sort"
)

// Diff returns the dotted paths of the slots that differ between oldState and newState.
// Nested map[string]any values are walked; anything else is compared as a whole.
// A nil oldState reports every top-level key of newState.
// The result is sorted and nil when nothing changed.
func Diff(oldState, newState any) []string {
	var paths []string
	diffValue("", oldState, newState, &paths)
	sort.Strings(paths)
	return paths
}

func diffValue(prefix string, oldVal, newVal any, paths *[]string) {
	oldMap, oldOK := oldVal.(map[string]any)
	newMap, newOK := newVal.(map[string]any)

	if !oldOK || !newOK {
		if oldVal == nil && newOK && prefix == "" {
			for k := range newMap {
				*paths = append(*paths, k)
			}
			return
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			*paths = append(*paths, nonEmpty(prefix))
		}
		return
	}

	// Same map value: nothing below it changed.
	if reflect.ValueOf(oldMap).UnsafePointer() == reflect.ValueOf(newMap).UnsafePointer() {
		return
	}

	// Added or modified
	for k, nv := range newMap {
		ov, exists := oldMap[k]
		if !exists {
			*paths = append(*paths, join(prefix, k))
			continue
		}
		diffValue(join(prefix, k), ov, nv, paths)
	}

	// Deleted
	for k := range oldMap {
		if _, exists := newMap[k]; !exists {
			*paths = append(*paths, join(prefix, k))
		}
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func nonEmpty(path string) string {
	if path == "" {
		return "."
	}
	return path
}
