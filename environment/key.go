package environment

import (
	"strings"

	"github.com/KOMKZ/go-yogan-confenv/config"
)

// DefaultKey is the cache key used when both prefix and id are blank
const DefaultKey = "dubbo."

// ToKey normalizes (prefix, id) into a cache key ending with "."
func ToKey(prefix, id string) string {
	var sb strings.Builder
	if !config.IsBlank(prefix) {
		sb.WriteString(prefix)
	}
	if !config.IsBlank(id) {
		sb.WriteString(id)
	}
	if sb.Len() == 0 {
		return DefaultKey
	}
	key := sb.String()
	if !strings.HasSuffix(key, ".") {
		key += "."
	}
	return key
}
