package grading

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// AnswerDigest is the content hash stored in the question document for a
// multiple-choice answer key: option ids sorted lexicographically,
// joined with a comma, sha256, hex. Selection order never changes the
// digest, so {b,a} and {a,b} grade identically.
func AnswerDigest(ids []string) string {
	sorted := make([]string, len(ids))
	copy(sorted, ids)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}
