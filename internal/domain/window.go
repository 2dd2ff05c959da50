package domain

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidWindow = errors.New("invalid chart window")

// Window — глубина истории цен в днях
type Window int

const (
	Window1d   Window = 1
	Window30d  Window = 30
	Window365d Window = 365
)

func (w Window) Valid() bool {
	switch w {
	case Window1d, Window30d, Window365d:
		return true
	}
	return false
}

// ParseWindow разбирает "1" | "30" | "365"; пустая строка — сутки.
func ParseWindow(s string) (Window, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Window1d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Window(n).Valid() {
		return 0, ErrInvalidWindow
	}
	return Window(n), nil
}
