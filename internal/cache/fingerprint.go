package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// Fingerprint derives a stable cache key from a tool/operation name and its
// arguments, per §4.4 ("Keys are SHA-256 over the canonicalized tool-call
// arguments"). args is marshaled with sorted map keys so equivalent argument
// sets always produce the same key regardless of construction order.
func Fingerprint(operation string, args map[string]interface{}) string {
	canon := canonicalize(args)
	payload, _ := json.Marshal(struct {
		Op   string      `json:"op"`
		Args interface{} `json:"args"`
	}{Op: operation, Args: canon})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// canonicalize recursively rewrites maps into sorted key/value pairs so
// encoding/json's (already-sorted) map key ordering is reinforced for nested
// structures built from interface{} (e.g. decoded JSON tool arguments).
func canonicalize(v interface{}) interface{} {
	switch x := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]keyValue, 0, len(keys))
		for _, k := range keys {
			out = append(out, keyValue{Key: k, Value: canonicalize(x[k])})
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, e := range x {
			out[i] = canonicalize(e)
		}
		return out
	default:
		return x
	}
}

type keyValue struct {
	Key   string      `json:"k"`
	Value interface{} `json:"v"`
}
