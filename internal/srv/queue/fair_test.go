package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotations(t *testing.T) {
	tests := []struct {
		name      string
		window    []string
		rotations [][]string
	}{
		{name: "empty", window: nil, rotations: nil},
		{name: "single", window: []string{"A"}, rotations: [][]string{{"A"}}},
		{name: "distinct", window: []string{"A", "B", "C"}, rotations: [][]string{{"A", "B", "C"}}},
		{name: "repeat starts a rotation", window: []string{"A", "B", "A", "C", "B"}, rotations: [][]string{{"A", "B"}, {"A", "C", "B"}}},
		{name: "same contributor", window: []string{"A", "A", "A"}, rotations: [][]string{{"A"}, {"A"}, {"A"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.rotations, Rotations(tt.window))
		})
	}
}

func TestEvaluateAdmission(t *testing.T) {
	tests := []struct {
		name          string
		window        []string
		contributorId string
		admitted      bool
		rotation      int
	}{
		{name: "empty window", window: []string{}, contributorId: "A", admitted: true, rotation: 0},
		{name: "newcomer", window: []string{"A", "B"}, contributorId: "C", admitted: true, rotation: 0},
		{name: "alone in the window", window: []string{"A"}, contributorId: "A", admitted: false, rotation: 1},
		{name: "full rotation", window: []string{"A", "B", "C"}, contributorId: "A", admitted: false, rotation: 1},
		{name: "room in a later rotation", window: []string{"A", "B", "A"}, contributorId: "B", admitted: true, rotation: 1},
		{name: "room in an earlier rotation", window: []string{"A", "B", "A", "C"}, contributorId: "C", admitted: true, rotation: 0},
		{name: "one entry in every rotation", window: []string{"A", "B", "A", "C"}, contributorId: "A", admitted: false, rotation: 2},
		{name: "placeholders", window: []string{UnknownContributor, UnknownContributor}, contributorId: "A", admitted: true, rotation: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			admission := EvaluateAdmission(tt.window, tt.contributorId)
			assert.Equal(t, tt.admitted, admission.Admitted)
			assert.Equal(t, tt.rotation, admission.Rotation)
		})
	}
}

func TestStep(t *testing.T) {
	assert.Equal(t, 0, step(2, Next, 3))
	assert.Equal(t, 2, step(0, Prev, 3))
	assert.Equal(t, 1, step(0, Next, 3))
	assert.Equal(t, 0, step(0, Next, 1))
	assert.Equal(t, 0, step(5, Prev, 0))
}

func TestShiftAfterRemoval(t *testing.T) {
	assert.Equal(t, 1, shiftAfterRemoval(2, 0, 3), "removal before")
	assert.Equal(t, 2, shiftAfterRemoval(2, 2, 4), "removal at")
	assert.Equal(t, 0, shiftAfterRemoval(2, 2, 2), "removal of the last track")
	assert.Equal(t, 0, shiftAfterRemoval(0, 0, 0), "queue emptied")
}
