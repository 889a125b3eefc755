package domain_test

import (
	"testing"

	"dircore/testutil"
)

// The domain package sits at the bottom of the dependency graph; it must
// never reach back into service internals.
func TestDomainImportsNoInternals(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.InternalImportForbidden,
		"pkg/domain must stay free of internal dependencies")
}
