package kv

// SnapshotRotateThresholdForTest exposes snapshotRotateThreshold to black-box
// tests in kv_test without widening the package's public API.
func SnapshotRotateThresholdForTest() int { return snapshotRotateThreshold }
