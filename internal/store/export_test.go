package store

import "testing"

// NewFakeSheetsStore returns a SheetsStore over an in-process workbook for
// tests outside the package, plus a reader of the workbook's current values.
func NewFakeSheetsStore(t *testing.T, worksheets map[string][][]interface{}) (*SheetsStore, func(title string) ([][]interface{}, bool)) {
	t.Helper()
	fake := &fakeSheets{sheets: worksheets}
	read := func(title string) ([][]interface{}, bool) {
		fake.mu.Lock()
		defer fake.mu.Unlock()
		v, ok := fake.sheets[title]
		return v, ok
	}
	return newFakeSheetsStore(t, fake), read
}
