package convert

import (
	"strconv"
	"strings"
)

type StrTo string

func (s StrTo) String() string {
	return string(s)
}

func (s StrTo) Int() (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s.String()))
	return v, err
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

func (s StrTo) Int64() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s.String()), 10, 64)
}

func (s StrTo) MustInt64() int64 {
	v, _ := s.Int64()
	return v
}
