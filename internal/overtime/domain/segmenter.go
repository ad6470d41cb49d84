package domain

import "sort"

// Kind is the pay-rate window a segment falls in
type Kind string

const (
	KindDiurnal   Kind = "diurnal"
	KindNocturnal Kind = "nocturnal"
)

// Label is the capitalised name used in descriptions and reports
func (k Kind) Label() string {
	if k == KindDiurnal {
		return "Diurnal"
	}
	return "Nocturnal"
}

// Segment is a maximal stretch of a tramo inside one pay-rate window
type Segment struct {
	Span Span
	Kind Kind
}

// windowsOf returns the three rate windows of the 24h block starting at b
func windowsOf(b Minute) [3]Segment {
	return [3]Segment{
		{Span{b, b + DiurnalStartMinute}, KindNocturnal},
		{Span{b + DiurnalStartMinute, b + DiurnalEndMinute}, KindDiurnal},
		{Span{b + DiurnalEndMinute, b + MinutesPerDay}, KindNocturnal},
	}
}

// Split cuts a span into diurnal and nocturnal segments. Neighbours of the
// same kind that touch, such as the two night windows meeting at midnight,
// come back as one segment.
func Split(s Span) []Segment {
	if s.Empty() {
		return nil
	}

	var parts []Segment
	first := DayOffset(s.Start)
	last := DayOffset(s.End - 1)
	for day := first; day <= last; day++ {
		for _, w := range windowsOf(Minute(day) * MinutesPerDay) {
			if cut := s.Intersect(w.Span); !cut.Empty() {
				parts = append(parts, Segment{Span: cut, Kind: w.Kind})
			}
		}
	}

	return merge(parts)
}

func merge(parts []Segment) []Segment {
	sort.Slice(parts, func(i, j int) bool { return parts[i].Span.Start < parts[j].Span.Start })

	merged := make([]Segment, 0, len(parts))
	for _, p := range parts {
		if n := len(merged); n > 0 {
			prev := &merged[n-1]
			if prev.Kind == p.Kind && prev.Span.End == p.Span.Start {
				prev.Span.End = p.Span.End
				continue
			}
		}
		merged = append(merged, p)
	}
	return merged
}
