package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "Town", FirstNonEmpty("", "  ", " Town ", "City"))
	assert.Equal(t, "", FirstNonEmpty())
	assert.Equal(t, "", FirstNonEmpty(" ", ""))
}

func TestFirstSegment(t *testing.T) {
	testCases := map[string]string{
		"Roma, Lazio, Italia": "Roma",
		"  Paris ":            "Paris",
		", trailing":          "",
		"":                    "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, FirstSegment(in), in)
	}
}
