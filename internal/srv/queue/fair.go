package queue

import "slices"

// Admission is the outcome of a fairness evaluation
type Admission struct {
	Admitted bool
	// Rotation is the first rotation of the window without an entry of the contributor.
	// When every rotation already holds one, it equals the number of rotations.
	Rotation int
}

// Rotations splits a window into maximal runs of distinct contributors.
// Each run ends right before the first contributor it already contains.
func Rotations(window []string) [][]string {
	var rotations [][]string
	for start := 0; start < len(window); {
		end := start
		for end < len(window) && !slices.Contains(window[start:end], window[end]) {
			end++
		}
		rotations = append(rotations, window[start:end])
		start = end
	}
	return rotations
}

// EvaluateAdmission decides if contributorId may add one more track to the window.
// An empty window admits. Otherwise the contributor is admitted as long as one rotation
// still lacks an entry from them, and is told to wait once every rotation holds one.
func EvaluateAdmission(window []string, contributorId string) Admission {
	rotations := Rotations(window)
	for i, rotation := range rotations {
		if !slices.Contains(rotation, contributorId) {
			return Admission{Admitted: true, Rotation: i}
		}
	}
	return Admission{Admitted: len(rotations) == 0, Rotation: len(rotations)}
}
