package reconcile

import "opsboard/internal/models"

// Quote IDs are partitioned into fixed ranges by area so IDs stay
// human-sortable by business unit. Area A allocates from [1000,2000),
// area B from [2000,3000), everything else from 3000 up.
const (
	areaAFloor   = 1000
	areaBFloor   = 2000
	defaultFloor = 3000
)

// NextQuoteID returns the next free ID in the area's range: one past the
// highest existing ID in that range, or the range floor when the range is
// empty. IDs belonging to other ranges are ignored. Callers that may run
// concurrently must serialize allocate+append+save themselves; without that
// two writers can mint the same ID.
func NextQuoteID(area string, sales []models.Sale) int {
	floor, ceil := rangeFor(area)
	next := floor
	for _, s := range sales {
		if s.QuoteID < floor || (ceil > 0 && s.QuoteID >= ceil) {
			continue
		}
		if s.QuoteID+1 > next {
			next = s.QuoteID + 1
		}
	}
	return next
}

// rangeFor maps an area label to its [floor, ceil) ID range; ceil 0 means
// unbounded. Labels are matched loosely ("A", "a", "Area A", "AreaA") since
// they come straight off intake forms.
func rangeFor(area string) (floor, ceil int) {
	s := normalizeArea(area)
	switch s {
	case "A":
		return areaAFloor, areaBFloor
	case "B":
		return areaBFloor, defaultFloor
	default:
		return defaultFloor, 0
	}
}

func normalizeArea(area string) string {
	out := make([]byte, 0, len(area))
	for i := 0; i < len(area); i++ {
		c := area[i]
		if c == ' ' || c == '\t' {
			continue
		}
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out = append(out, c)
	}
	s := string(out)
	if len(s) > 4 && s[:4] == "AREA" {
		s = s[4:]
	}
	return s
}
