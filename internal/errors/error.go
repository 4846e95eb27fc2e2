package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGame    = errors.New("invalid game description")
	ErrIllegalMove    = errors.New("illegal move in game")
	ErrUnvisitedRoot  = errors.New("search root has no playouts")
	ErrNodeIndex      = errors.New("search tree node index out of range")
	ErrTreeCycle      = errors.New("search tree contains a cycle")
	ErrForeignBoard   = errors.New("board was not created by this engine")
	ErrInvalidRequest = errors.New("invalid request")
)

// MoveError указывает на первый недопустимый ход партии (нумерация с 1).
type MoveError struct {
	Index int
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("invalid move %d in game", e.Index)
}

func (e *MoveError) Unwrap() error {
	return ErrIllegalMove
}
