package store

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CSV file encodings.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin1"
)

// CSVStore keeps each table as <dir>/<file>.csv.
type CSVStore struct {
	dir       string
	encoding  string
	delimiter rune
	files     map[string]string
	log       *zap.Logger
}

type CSVOption func(*CSVStore)

// WithEncoding selects utf-8 (default) or latin1 files.
func WithEncoding(encoding string) CSVOption {
	return func(s *CSVStore) { s.encoding = strings.ToLower(encoding) }
}

// WithDelimiter sets the field separator (default ',').
func WithDelimiter(r rune) CSVOption {
	return func(s *CSVStore) { s.delimiter = r }
}

// WithFileNames maps logical table names to file base names.
func WithFileNames(files map[string]string) CSVOption {
	return func(s *CSVStore) {
		for k, v := range files {
			s.files[k] = v
		}
	}
}

// WithLogger receives warnings about malformed files.
func WithLogger(log *zap.Logger) CSVOption {
	return func(s *CSVStore) {
		if log != nil {
			s.log = log
		}
	}
}

func NewCSVStore(dir string, opts ...CSVOption) *CSVStore {
	s := &CSVStore{
		dir:       dir,
		encoding:  EncodingUTF8,
		delimiter: ',',
		files:     make(map[string]string),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CSVStore) path(name string) string {
	base := name
	if f, ok := s.files[name]; ok && f != "" {
		base = f
	}
	if !strings.HasSuffix(strings.ToLower(base), ".csv") {
		base += ".csv"
	}
	return filepath.Join(s.dir, base)
}

// LoadTable reads the table's CSV file. A missing file loads as an empty table.
func (s *CSVStore) LoadTable(ctx context.Context, name string) (*Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := s.path(name)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Table{Name: name}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return &Table{Name: name}, nil
	}

	var r io.Reader = bytes.NewReader(bytes.TrimPrefix(raw, []byte("\ufeff")))
	if s.encoding == EncodingLatin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}

	cr := csv.NewReader(r)
	cr.Comma = s.delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	raws, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(raws) < 2 {
		return FromRecords(name, raws), nil
	}
	header, keep := s.uniqueHeader(name, raws[0])
	if len(keep) == 0 {
		return &Table{Name: name}, nil
	}
	raws[0] = header
	for i, rec := range raws[1:] {
		raws[i+1] = project(rec, keep)
	}

	df := dataframe.LoadRecords(raws,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, df.Err)
	}

	records := df.Records()
	for _, rec := range records[1:] {
		for i, v := range rec {
			if v == "NaN" {
				rec[i] = ""
			}
		}
	}
	return FromRecords(name, records), nil
}

// project picks the kept cells of rec, reading cells past its end as blank.
func project(rec []string, keep []int) []string {
	out := make([]string, len(keep))
	for j, i := range keep {
		if i < len(rec) {
			out[j] = rec[i]
		}
	}
	return out
}

// uniqueHeader drops unnamed columns and returns the remaining names with the
// source index of each. The first column of a repeated name keeps it; later
// copies are suffixed _2, _3 and so on.
func (s *CSVStore) uniqueHeader(table string, header []string) ([]string, []int) {
	var names []string
	var keep []int
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			renamed := fmt.Sprintf("%s_%d", h, n)
			for seen[renamed] > 0 {
				n++
				renamed = fmt.Sprintf("%s_%d", h, n)
			}
			seen[renamed]++
			s.log.Warn("duplicate csv column renamed",
				zap.String("table", table),
				zap.String("column", h),
				zap.String("renamed", renamed))
			h = renamed
		}
		names = append(names, h)
		keep = append(keep, i)
	}
	return names, keep
}
