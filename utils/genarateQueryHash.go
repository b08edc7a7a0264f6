package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// GenerateCacheKey builds a stable "<resource>:<sha256>" key from a filter set.
func GenerateCacheKey(resourceType string, filters map[string]string) string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := fmt.Sprintf("resource=%s", resourceType)
	for _, k := range keys {
		query += fmt.Sprintf("&%s=%s", k, filters[k])
	}

	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s:%s", resourceType, hex.EncodeToString(sum[:]))
}
