//go:build !windows

package fs

// ShouldHideFromListing reports entries that never show up in scans.
// Only Windows marks such entries; elsewhere nothing is protected.
func ShouldHideFromListing(_, _ string) bool {
	return false
}
