package diff

// Stats counts lines per kind.
type Stats struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

// Stats returns the line counts of d.
func (d *Diff) Stats() Stats {
	var s Stats
	for _, h := range d.Hunks {
		switch h.Kind {
		case KindAdded:
			s.Added += len(h.Lines)
		case KindRemoved:
			s.Removed += len(h.Lines)
		case KindUnchanged:
			s.Unchanged += len(h.Lines)
		}
	}
	return s
}

// Changes returns the number of added plus removed lines, the size of the edit script.
func (s Stats) Changes() int {
	return s.Added + s.Removed
}
