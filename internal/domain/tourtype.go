package domain

import "fmt"

// TourType is the closed set of tour categories the operator runs.
type TourType uint8

const (
	GionWalk TourType = iota + 1
	ArashiyamaWalk
	KyotoFood
	OsakaFood
	FreeTour

	tourTypeEnd
)

type tourTypeInfo struct {
	code string
	ja   string
	en   string
}

// tourTypes is indexed by TourType. Index 0 is the invalid zero value.
var tourTypes = [...]tourTypeInfo{
	GionWalk:       {"GION_WALK", "祇園ウォーキング", "Gion Walk"},
	ArashiyamaWalk: {"ARASHIYAMA_WALK", "嵐山ウォーキング", "Arashiyama Walk"},
	KyotoFood:      {"KYOTO_FOOD", "京都フードツアー", "Kyoto Food Tour"},
	OsakaFood:      {"OSAKA_FOOD", "大阪フードツアー", "Osaka Food Tour"},
	FreeTour:       {"FREE_TOUR", "無料ツアー", "Free Tour"},
}

// Fails to compile if a variant is added without a table entry.
var _ = [1]struct{}{}[len(tourTypes)-int(tourTypeEnd)]

// TourTypes returns every valid tour type in declaration order.
func TourTypes() []TourType {
	out := make([]TourType, 0, tourTypeEnd-1)
	for t := GionWalk; t < tourTypeEnd; t++ {
		out = append(out, t)
	}
	return out
}

// Valid reports whether t is one of the declared variants.
func (t TourType) Valid() bool {
	return t >= GionWalk && t < tourTypeEnd
}

// String returns the wire code, e.g. "GION_WALK".
func (t TourType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("TourType(%d)", uint8(t))
	}
	return tourTypes[t].code
}

// Label returns the display label in the given language.
func (t TourType) Label(lang Language) string {
	if !t.Valid() {
		return t.String()
	}
	if lang == English {
		return tourTypes[t].en
	}
	return tourTypes[t].ja
}

// ParseTourType maps a wire code to its TourType.
func ParseTourType(code string) (TourType, error) {
	for t := GionWalk; t < tourTypeEnd; t++ {
		if tourTypes[t].code == code {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tour type %q", code)
}

// MarshalText encodes t as its wire code.
func (t TourType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("marshal invalid tour type %d", uint8(t))
	}
	return []byte(tourTypes[t].code), nil
}

// UnmarshalText decodes a wire code. Unknown codes decode to the zero
// value so that a single bad remote record can be dropped by validation
// instead of failing the whole payload.
func (t *TourType) UnmarshalText(b []byte) error {
	parsed, err := ParseTourType(string(b))
	if err != nil {
		*t = 0
		return nil
	}
	*t = parsed
	return nil
}
