// Package export renders record collections for hand-off to spreadsheets
// and mail clients. Every function is pure.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// bom makes spreadsheet tools detect UTF-8 so Japanese guide names and
// notes are not mangled.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Header is the first row of every tabular export.
var Header = []string{"Date", "Type", "Guide", "Revenue", "Guests", "Duration"}

// ToCSV encodes records in input order, prefixed with a UTF-8 byte order
// mark. Type is written as its code so the file can be read back.
func ToCSV(records []domain.TourRecord) []byte {
	var buf bytes.Buffer
	buf.Write(bom)
	w := csv.NewWriter(&buf)

	//nolint:errcheck // bytes.Buffer.Write never returns an error.
	w.Write(Header)
	for _, r := range records {
		//nolint:errcheck
		w.Write(row(r))
	}
	w.Flush()
	return buf.Bytes()
}

// row encodes r as one export line.
func row(r domain.TourRecord) []string {
	return []string{
		r.Date,
		r.Type.String(),
		r.Guide,
		strconv.FormatInt(r.Revenue, 10),
		strconv.Itoa(r.Guests),
		strconv.FormatFloat(r.Duration, 'f', -1, 64),
	}
}

// FileName returns the download name for an export taken at now, e.g.
// "wonderland_records_2025-10-14.csv".
func FileName(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, now.Format(domain.DateLayout), ext)
}
