package experiment

import (
	"fmt"
	"sort"
)

// FlattenArgs converts an argument map into CLI arguments for the
// external scripts. Keys are emitted in sorted order so the resulting
// command line is deterministic. Nil values are skipped, true booleans
// become bare flags, false booleans are dropped, and list values expand
// to one flag followed by every element.
func FlattenArgs(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	flattened := make([]string, 0, 2*len(args))
	for _, key := range keys {
		value := args[key]
		if value == nil {
			continue
		}
		flag := "--" + key
		switch v := value.(type) {
		case bool:
			if v {
				flattened = append(flattened, flag)
			}
		case []any:
			flattened = append(flattened, flag)
			for _, e := range v {
				flattened = append(flattened, formatArg(e))
			}
		case []int:
			flattened = append(flattened, flag)
			for _, e := range v {
				flattened = append(flattened, formatArg(e))
			}
		case []string:
			flattened = append(flattened, flag)
			flattened = append(flattened, v...)
		default:
			flattened = append(flattened, flag, formatArg(v))
		}
	}
	return flattened
}

// formatArg renders a scalar the way the scripts expect: plain decimal
// for numbers, %v for everything else.
func formatArg(v any) string {
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%g", t)
	case float32:
		return fmt.Sprintf("%g", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
