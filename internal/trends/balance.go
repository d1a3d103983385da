package trends

// Balance caps and reorders a trend list to hit a target sports/non-sports
// composition. sportsLabels runs parallel to the input (true = sports); the
// output is nonSports[:maxNonSports] followed by sports[:maxSports].
//
// When the input is smaller than the combined targets, the targets shrink
// proportionally so a thin trend day still yields a mixed list instead of
// starving one side. The 5/10 defaults (3/7 after shrink on small batches)
// are empirical and come from configuration.
func Balance(input []Trend, sportsLabels []bool, maxSports, maxNonSports int) []Trend {
	var sports, nonSports []Trend
	for i, t := range input {
		if i < len(sportsLabels) && sportsLabels[i] {
			sports = append(sports, t)
		} else {
			nonSports = append(nonSports, t)
		}
	}

	total := maxSports + maxNonSports
	if total <= 0 {
		return nil
	}
	if len(input) < total {
		scaledSports := len(input) * maxSports / total
		maxNonSports = len(input) - scaledSports
		maxSports = scaledSports
	}

	if len(nonSports) > maxNonSports {
		nonSports = nonSports[:maxNonSports]
	}
	if len(sports) > maxSports {
		sports = sports[:maxSports]
	}

	out := make([]Trend, 0, len(nonSports)+len(sports))
	out = append(out, nonSports...)
	out = append(out, sports...)
	return out
}
