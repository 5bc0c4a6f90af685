package mfs

import "fmt"

// ValidName checks a candidate file name for registration. MFS files are
// flat (no directory hierarchy, per the non-goals), so this is far smaller
// than a path normalizer for a hierarchical protocol: it only rejects what
// would make the name unrepresentable on the wire or unmatchable by
// resolve — an embedded NUL (which resolve already treats as "not found"
// at lookup time, but which registerFile rejects outright so no slot ever
// holds a name that can never be looked up again) and names longer than
// maxLen. Called from registerFile before a slot is claimed.
func ValidName(name string, maxLen int) error {
	if name == "" {
		return fmt.Errorf("mfs: file name must not be empty")
	}
	if len(name) > maxLen {
		return fmt.Errorf("mfs: file name length %d exceeds %d", len(name), maxLen)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return fmt.Errorf("mfs: file name must not contain NUL")
		}
	}
	return nil
}
