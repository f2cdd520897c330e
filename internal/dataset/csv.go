package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// CommentMarker starts a metadata line that is never part of the data.
const CommentMarker = '#'

var (
	// ErrNoHeader is returned when a file contains no header row.
	ErrNoHeader = errors.New("no header row")
	// ErrTooLarge is returned when a file exceeds Options.MaxBytes.
	ErrTooLarge = errors.New("file exceeds size limit")
)

// Row represents a single CSV row with column name to value mapping.
type Row map[string]string

// Options bounds how a file is read. The zero value reads without limits.
type Options struct {
	// MaxBytes caps the number of decompressed bytes read from a file.
	// Zero or negative disables the cap.
	MaxBytes int64
}

// Open opens path for reading, transparently decompressing files that end
// in ".gz".
func Open(path string, opts Options) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("csv: open %s: %w", path, err)
	}

	var rc io.ReadCloser = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close() //nolint:errcheck
			return nil, fmt.Errorf("csv: gzip %s: %w", path, err)
		}
		rc = &stackedCloser{Reader: zr, closers: []io.Closer{zr, f}}
	}

	if opts.MaxBytes > 0 {
		rc = &limitedReadCloser{rc: rc, remaining: opts.MaxBytes}
	}
	return rc, nil
}

// LoadCSV reads a CSV file and returns rows as maps of column to value.
// Lines starting with '#' and blank lines are skipped. The first remaining
// line is treated as headers (column names).
func LoadCSV(path string, opts Options) ([]Row, error) {
	rc, err := Open(path, opts)
	if err != nil {
		return nil, err
	}
	defer rc.Close() //nolint:errcheck

	reader := csv.NewReader(skipBOM(rc))
	reader.Comment = CommentMarker
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: parse %s: %w", path, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s: %w", path, ErrNoHeader)
	}

	headers := records[0]
	rows := make([]Row, 0, len(records)-1)

	for i, record := range records[1:] {
		if len(record) != len(headers) {
			return nil, fmt.Errorf("csv: row %d has %d columns, expected %d", i+2, len(record), len(headers))
		}
		row := make(Row, len(headers))
		for j, h := range headers {
			row[h] = record[j]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ReadFirstLine returns the first line of a file without its line ending.
// Only that line is read; the rest of the file is left untouched.
func ReadFirstLine(path string, opts Options) (string, error) {
	rc, err := Open(path, opts)
	if err != nil {
		return "", err
	}
	defer rc.Close() //nolint:errcheck

	line, err := skipBOM(rc).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("csv: read %s: %w", path, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// utf8BOM is the byte order mark some spreadsheet exports prepend.
const utf8BOM = "\ufeff"

// skipBOM drops a leading UTF-8 byte order mark so the first header cell
// and a leading comment marker are seen as written.
func skipBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == utf8BOM {
		br.Discard(len(utf8BOM)) //nolint:errcheck
	}
	return br
}

type stackedCloser struct {
	io.Reader
	closers []io.Closer
}

func (s *stackedCloser) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type limitedReadCloser struct {
	rc        io.ReadCloser
	remaining int64
}

func (l *limitedReadCloser) Read(p []byte) (int, error) {
	if l.remaining <= 0 {
		// Read one more byte so a file of exactly MaxBytes is still accepted.
		var extra [1]byte
		n, err := l.rc.Read(extra[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}
	if int64(len(p)) > l.remaining {
		p = p[:l.remaining]
	}
	n, err := l.rc.Read(p)
	l.remaining -= int64(n)
	return n, err
}

func (l *limitedReadCloser) Close() error {
	return l.rc.Close()
}
