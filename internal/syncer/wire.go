package syncer

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shinichiro-kawabata/wonderlandjapan-admin/internal/domain"
)

// pushBody is the envelope the sync endpoint expects on POST.
type pushBody struct {
	Action string       `json:"action"`
	Data   []wireRecord `json:"data"`
}

// wireRecord is a record as it travels to the endpoint. Field names are
// camelCase and createdAt is epoch milliseconds.
type wireRecord struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Type      string  `json:"type"`
	Guide     string  `json:"guide"`
	Revenue   int64   `json:"revenue"`
	Guests    int     `json:"guests"`
	Duration  float64 `json:"duration"`
	Notes     string  `json:"notes,omitempty"`
	CreatedAt int64   `json:"createdAt"`
}

// pulledRecord is a record as it comes back from the endpoint. Spreadsheet
// backed endpoints return numbers and ids as strings, and dates as full
// timestamps, so the fields are decoded leniently here and validated later.
type pulledRecord struct {
	ID        flexString `json:"id"`
	Date      string     `json:"date"`
	Type      string     `json:"type"`
	Guide     flexString `json:"guide"`
	Revenue   flexNumber `json:"revenue"`
	Guests    flexNumber `json:"guests"`
	Duration  flexNumber `json:"duration"`
	Notes     flexString `json:"notes"`
	CreatedAt flexNumber `json:"createdAt"`
}

func toWire(r domain.TourRecord) wireRecord {
	w := wireRecord{
		ID:       r.ID,
		Date:     r.Date,
		Guide:    r.Guide,
		Revenue:  r.Revenue,
		Guests:   r.Guests,
		Duration: r.Duration,
		Notes:    r.Notes,
	}
	if r.Type.Valid() {
		w.Type = r.Type.String()
	}
	if !r.CreatedAt.IsZero() {
		w.CreatedAt = r.CreatedAt.UnixMilli()
	}
	return w
}

// fromPulled maps a decoded remote record to the domain. It never fails;
// values that cannot be mapped are left zero so validation rejects them.
// Timestamp dates are reduced to a day in loc.
func fromPulled(p pulledRecord, loc *time.Location) domain.TourRecord {
	r := domain.TourRecord{
		ID:       strings.TrimSpace(string(p.ID)),
		Date:     p.Date,
		Guide:    strings.TrimSpace(string(p.Guide)),
		Revenue:  p.Revenue.whole(),
		Guests:   int(p.Guests.whole()),
		Duration: float64(p.Duration),
		Notes:    string(p.Notes),
	}
	if d, err := domain.NormalizeDateIn(p.Date, loc); err == nil {
		r.Date = d
	}
	if t, err := domain.ParseTourType(strings.TrimSpace(p.Type)); err == nil {
		r.Type = t
	}
	if ms := p.CreatedAt.whole(); ms > 0 {
		r.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return r
}

// decodeSnapshot decodes a JSON array of records one element at a time so a
// single malformed element is dropped instead of failing the whole pull.
// It returns the decoded records and how many elements could not be decoded.
func decodeSnapshot(body []byte, loc *time.Location) ([]domain.TourRecord, int, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode snapshot: %w", err)
	}
	out := make([]domain.TourRecord, 0, len(raw))
	skipped := 0
	for _, elem := range raw {
		var p pulledRecord
		if err := json.Unmarshal(elem, &p); err != nil {
			skipped++
			continue
		}
		out = append(out, fromPulled(p, loc))
	}
	return out, skipped, nil
}

// flexNumber accepts a JSON number, a numeric string (thousands separators
// allowed), or null/empty which decodes to NaN so validation fails.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*n = flexNumber(math.NaN())
		return nil
	}
	s := string(b)
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
		if s == "" {
			*n = flexNumber(math.NaN())
			return nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("flexNumber: %w", err)
	}
	*n = flexNumber(f)
	return nil
}

// whole rounds n to an integer. NaN and infinities map to -1, which every
// non-negative field rejects.
func (n flexNumber) whole() int64 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32*1e6 {
		return -1
	}
	return int64(math.Round(f))
}

// flexString accepts a JSON string or number.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*s = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	default:
		if _, err := strconv.ParseFloat(string(b), 64); err != nil {
			return fmt.Errorf("flexString: %w", err)
		}
		*s = flexString(b)
		return nil
	}
}

// MarshalSnapshot encodes records the way an endpoint answers a pull.
func MarshalSnapshot(records []domain.TourRecord) ([]byte, error) {
	out := make([]wireRecord, 0, len(records))
	for _, r := range records {
		out = append(out, toWire(r))
	}
	return json.Marshal(out)
}

// UnmarshalPush decodes a push envelope. Elements of data that cannot be
// decoded are skipped and counted, like on a pull. Timestamp dates are
// reduced to a day in loc; nil means domain.DefaultLocation.
func UnmarshalPush(body []byte, loc *time.Location) (action string, records []domain.TourRecord, skipped int, err error) {
	var env struct {
		Action string          `json:"action"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return "", nil, 0, fmt.Errorf("decode push: %w", err)
	}
	if len(env.Data) == 0 {
		return env.Action, []domain.TourRecord{}, 0, nil
	}
	records, skipped, err = decodeSnapshot(env.Data, loc)
	if err != nil {
		return "", nil, 0, err
	}
	return env.Action, records, skipped, nil
}
