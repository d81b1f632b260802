package testutil

import "time"

// Fixed identifiers and instants for deterministic testing.
var (
	TestUserID1 = "user-0001"
	TestUserID2 = "user-0002"

	// TestNow is a fixed wall-clock instant used by fake clocks.
	TestNow = time.Date(2026, time.October, 16, 9, 30, 0, 0, time.UTC)
)
