package archive

import (
	"testing"

	"clubsheet/testutil"
)

func TestNoBackendImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.BackendImportForbidden, "archive works through the sheet and blob interfaces")
}
