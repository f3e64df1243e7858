package period

import "time"

// WeekdaySet is a bitmask of weekdays. Bit n is Sunday+n.
type WeekdaySet uint8

// Weekdays builds a set from ws, dropping duplicates and values outside 0-6.
func Weekdays(ws []time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, w := range ws {
		if w < time.Sunday || w > time.Saturday {
			continue
		}
		s |= 1 << uint(w)
	}
	return s
}

func (s WeekdaySet) Contains(w time.Weekday) bool {
	if w < time.Sunday || w > time.Saturday {
		return false
	}
	return s&(1<<uint(w)) != 0
}

func (s WeekdaySet) Empty() bool { return s == 0 }

// Len returns the number of distinct weekdays in the set
func (s WeekdaySet) Len() int {
	n := 0
	for w := time.Sunday; w <= time.Saturday; w++ {
		if s.Contains(w) {
			n++
		}
	}
	return n
}

// Slice returns the weekdays in Sunday-first order
func (s WeekdaySet) Slice() []time.Weekday {
	var out []time.Weekday
	for w := time.Sunday; w <= time.Saturday; w++ {
		if s.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}
