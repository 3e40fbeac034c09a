package grade

// CalculateGPA returns the unweighted mean of the point values of letters.
// Letters missing from the scale are skipped; an empty input yields 0.
func (s Scale) CalculateGPA(letters []string) float64 {
	var (
		total float64
		count int
	)
	for _, letter := range letters {
		pts, ok := s.Points[letter]
		if !ok {
			continue
		}
		total += pts
		count++
	}

	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// PointsFor returns the 4.0-scale value of letter.
func (s Scale) PointsFor(letter string) (float64, bool) {
	pts, ok := s.Points[letter]
	return pts, ok
}

// CalculateGPA computes a GPA with the default scale.
func CalculateGPA(letters []string) float64 {
	return DefaultScale().CalculateGPA(letters)
}
