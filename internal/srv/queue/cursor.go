package queue

type Direction int

const (
	Next Direction = 1
	Prev Direction = -1
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}
	return "next"
}

// step moves position one track in direction, wrapping around both ends of a queue of length tracks
func step(position int, direction Direction, length int) int {
	if length <= 0 {
		return 0
	}
	return ((position+int(direction))%length + length) % length
}

// shiftAfterRemoval keeps position on the same track once index has been removed
func shiftAfterRemoval(position int, index int, length int) int {
	if index < position {
		position--
	}
	if position >= length {
		return 0
	}
	return position
}
