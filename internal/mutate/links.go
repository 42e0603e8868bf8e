package mutate

import (
	"linkbox-cli/internal/model"
)

// The list operations below never modify their input; each returns a fresh list.

func Add(links []model.Link, label, url string) ([]model.Link, error) {
	l, err := NormalizeLink(label, url)
	if err != nil {
		return nil, err
	}
	next := make([]model.Link, 0, len(links)+1)
	next = append(next, links...)
	return append(next, l), nil
}

func Edit(links []model.Link, index int, label, url string) ([]model.Link, error) {
	if index < 0 || index >= len(links) {
		return nil, ErrOutOfRange
	}
	l, err := NormalizeLink(label, url)
	if err != nil {
		return nil, err
	}
	next := model.CloneLinks(links)
	next[index] = l
	return next, nil
}

func Delete(links []model.Link, index int) ([]model.Link, error) {
	if index < 0 || index >= len(links) {
		return nil, ErrOutOfRange
	}
	next := make([]model.Link, 0, len(links)-1)
	next = append(next, links[:index]...)
	return append(next, links[index+1:]...), nil
}

// StepTarget computes the destination index for a step move without checking range.
func StepTarget(n, index int, dir model.Direction) int {
	switch dir {
	case model.DirectionUp:
		return index - 1
	case model.DirectionDown:
		return index + 1
	case model.DirectionTop:
		return 0
	case model.DirectionBottom:
		return n - 1
	default:
		return index
	}
}

func MoveStep(links []model.Link, index int, dir model.Direction) ([]model.Link, error) {
	n := len(links)
	if index < 0 || index >= n {
		return nil, ErrOutOfRange
	}
	to := StepTarget(n, index, dir)
	if to < 0 || to >= n || to == index {
		return nil, ErrNoMove
	}
	return relocate(links, index, to), nil
}

// MoveTo relocates the element at from so that it lands at to. to may equal
// len(links), which appends.
func MoveTo(links []model.Link, from, to int) ([]model.Link, error) {
	n := len(links)
	if from < 0 || to < 0 || from >= n || to > n {
		return nil, ErrOutOfRange
	}
	if from == to {
		return nil, ErrNoMove
	}
	return relocate(links, from, to), nil
}

func relocate(links []model.Link, from, to int) []model.Link {
	moved := links[from]
	rest := make([]model.Link, 0, len(links))
	rest = append(rest, links[:from]...)
	rest = append(rest, links[from+1:]...)
	if to > len(rest) {
		to = len(rest)
	}
	next := make([]model.Link, 0, len(links))
	next = append(next, rest[:to]...)
	next = append(next, moved)
	return append(next, rest[to:]...)
}
