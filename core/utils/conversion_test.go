package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type level int

func TestToInt(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"Int", 5, 5},
		{"Int64", int64(-1), -1},
		{"Float", float64(3), 3},
		{"String", "42", 42},
		{"Bytes", []byte("7"), 7},
		{"Named Int", level(-1), -1},
		{"Nil", nil, 0},
		{"Garbage", "abc", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToInt(tt.in))
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "abc", ToString("abc"))
	assert.Equal(t, "10", ToString(float64(10)))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "12", ToString(12))
}

func TestToStringPtr(t *testing.T) {
	assert.Nil(t, ToStringPtr(nil))
	assert.Equal(t, "x", *ToStringPtr("x"))
	assert.Equal(t, "3", *ToStringPtr(int64(3)))
}
