package cart

import (
	"math"
	"strings"

	"github.com/google/uuid"
)

// roundQty rounds to 1 decimal to avoid floating point drift from repeated
// 0.5 increments (e.g. 1.5 kg).
func roundQty(q float64) float64 {
	return math.Round(q*10) / 10
}

func normNotes(s string) string {
	return strings.TrimSpace(s)
}

// addLine merges the candidate into the collection. Lines with the same
// product id and the same trimmed notes never coexist: all matches collapse
// into a single line carrying the first match's id and position, with the
// quantities summed. Otherwise a new line is appended with a fresh id.
func addLine(lines []Line, ref CatalogRef, quantity float64) []Line {
	refNotes := normNotes(ref.Notes)

	total := quantity
	first := -1
	for i, l := range lines {
		if l.ProductID == ref.ProductID && normNotes(l.Notes) == refNotes {
			total += l.Quantity
			if first < 0 {
				first = i
			}
		}
	}

	if first >= 0 {
		merged := lines[first]
		merged.Quantity = roundQty(total)
		out := make([]Line, 0, len(lines))
		for i, l := range lines {
			if l.ProductID == ref.ProductID && normNotes(l.Notes) == refNotes {
				if i == first {
					out = append(out, merged)
				}
				continue
			}
			out = append(out, l)
		}
		return out
	}

	return append(lines, Line{
		LineID:    uuid.NewString(),
		ProductID: ref.ProductID,
		Name:      ref.Name,
		UnitPrice: ref.UnitPrice,
		Quantity:  roundQty(quantity),
		Notes:     ref.Notes,
		ImageURL:  ref.ImageURL,
	})
}

// removeLine deletes the line with the given id; unknown ids are a no-op.
func removeLine(lines []Line, lineID string) []Line {
	out := lines[:0:0]
	for _, l := range lines {
		if l.LineID != lineID {
			out = append(out, l)
		}
	}
	return out
}

// setQuantity sets the line's quantity to the rounded value, or removes the
// line when the rounded value is zero or below.
func setQuantity(lines []Line, lineID string, quantity float64) []Line {
	q := roundQty(quantity)
	if q <= 0 {
		return removeLine(lines, lineID)
	}
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.LineID == lineID {
			l.Quantity = q
		}
		out[i] = l
	}
	return out
}

// setNotes replaces the line's notes verbatim. No trim and no merge
// re-check; two lines may temporarily render the same after a notes edit.
func setNotes(lines []Line, lineID, notes string) []Line {
	out := make([]Line, len(lines))
	for i, l := range lines {
		if l.LineID == lineID {
			l.Notes = notes
		}
		out[i] = l
	}
	return out
}
