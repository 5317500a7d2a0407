package table

import (
	"testing"

	"clubsheet/testutil"
)

func TestNoBackendImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.BackendImportForbidden, "table works through the sheet and blob interfaces")
}
