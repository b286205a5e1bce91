package eta

// SelectBestMode picks the candidate with the fewest minutes. Exact ties
// resolve by fixed priority (walk, subway, bus) so that identical inputs
// always select the same mode. An empty candidate list means the caller
// enabled no mode and is reported as ErrNoModes.
func SelectBestMode(candidates []Candidate) (Candidate, error) {
	if len(candidates) == 0 {
		return Candidate{}, ErrNoModes
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Minutes < best.Minutes {
			best = c
			continue
		}
		if c.Minutes == best.Minutes && selectionPriority[c.Mode] < selectionPriority[best.Mode] {
			best = c
		}
	}
	return best, nil
}
