package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore keeps each table as a worksheet of one spreadsheet. Row 1 is the header.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheets    map[string]string
}

// NewSheetsStore connects to the Sheets API. opts typically carry
// option.WithCredentialsFile; tests pass an endpoint and HTTP client.
func NewSheetsStore(ctx context.Context, spreadsheetID string, worksheets map[string]string, opts ...option.ClientOption) (*SheetsStore, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("spreadsheet id is required")
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	ws := make(map[string]string, len(worksheets))
	for k, v := range worksheets {
		ws[k] = v
	}
	return &SheetsStore{svc: svc, spreadsheetID: spreadsheetID, worksheets: ws}, nil
}

func (s *SheetsStore) worksheet(name string) string {
	if title, ok := s.worksheets[name]; ok && title != "" {
		return title
	}
	return name
}

func a1Range(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

// LoadTable reads the worksheet with formatted values. A worksheet that does not
// exist yet loads as an empty table; SaveTable creates it.
func (s *SheetsStore) LoadTable(ctx context.Context, name string) (*Table, error) {
	title := s.worksheet(name)
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, a1Range(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		if isMissingRange(err) {
			return &Table{Name: name}, nil
		}
		return nil, fmt.Errorf("read worksheet %q: %w", title, err)
	}
	return FromRecords(name, valuesToRecords(resp.Values)), nil
}

// SaveTable clears the worksheet and writes header plus rows, creating the
// worksheet first when it does not exist.
func (s *SheetsStore) SaveTable(ctx context.Context, t *Table) error {
	title := s.worksheet(t.Name)
	rng := a1Range(title)

	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &sheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		if !isMissingRange(err) {
			return fmt.Errorf("clear worksheet %q: %w", title, err)
		}
		if err := s.addWorksheet(ctx, title); err != nil {
			return err
		}
	}

	vr := &sheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         recordsToValues(Records(t)),
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write worksheet %q: %w", title, err)
	}
	return nil
}

func (s *SheetsStore) addWorksheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add worksheet %q: %w", title, err)
	}
	return nil
}

func isMissingRange(err error) bool {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return false
	}
	return gerr.Code == http.StatusBadRequest && strings.Contains(gerr.Message, "Unable to parse range")
}

func valuesToRecords(values [][]interface{}) [][]string {
	records := make([][]string, len(values))
	for i, row := range values {
		rec := make([]string, len(row))
		for j, cell := range row {
			if cell == nil {
				continue
			}
			rec[j] = fmt.Sprint(cell)
		}
		records[i] = rec
	}
	return records
}

func recordsToValues(records [][]string) [][]interface{} {
	values := make([][]interface{}, len(records))
	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		values[i] = row
	}
	return values
}
