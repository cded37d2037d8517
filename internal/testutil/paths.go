package testutil

// Fixture paths relative to the repository root.
const (
	// TestCatalog is a register catalog covering every preboot option.
	TestCatalog = "testdata/catalog.json"
)
