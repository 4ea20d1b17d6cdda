package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvironmentVariables(t *testing.T) {
	t.Setenv("BARTEBUSS_TEST_NETWORK", "eduroam")
	t.Setenv("BARTEBUSS_TEST_EMPTY", "")
	t.Setenv("OTHER_TEST_NETWORK", "home")

	env := GetEnvironmentVariables("BARTEBUSS_TEST_")

	assert.Equal(t, "eduroam", env["NETWORK"])
	assert.NotContains(t, env, "EMPTY")
	assert.Len(t, env, 1)
}

func TestInPlaceFilter(t *testing.T) {
	numbers := []int{1, 2, 3, 4, 5, 6}

	InPlaceFilter(&numbers, func(n int) bool { return n%2 == 0 })

	assert.Equal(t, []int{2, 4, 6}, numbers)
}

func TestRemoveDuplicateStrings(t *testing.T) {
	assert.Equal(t, []string{"b", "a", "c"}, RemoveDuplicateStrings([]string{"b", "", "a", "b", "c", "a"}))
	assert.Empty(t, RemoveDuplicateStrings(nil))
}
