package club

import (
	"testing"

	"clubsheet/testutil"
)

func TestNoBackendImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.BackendImportForbidden, "club works through the sheet and blob interfaces")
}
