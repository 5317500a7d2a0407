package views

import (
	"testing"

	"clubsheet/testutil"
)

func TestNoBackendImports(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".", testutil.BackendImportForbidden, "views works through the sheet and blob interfaces")
}
