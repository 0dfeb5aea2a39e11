//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequence(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, Sequence(1, 3, 1))
	assert.Equal(t, []int{10, 14, 18, 22, 26, 30, 34, 38}, Sequence(10, 40, 4))
	assert.Equal(t, []int{5}, Sequence(5, 5, 1))
	assert.Nil(t, Sequence(4, 3, 1))

	// a nonsense step is treated as 1
	assert.Equal(t, []int{1, 2, 3}, Sequence(1, 3, 0))
}

func TestArgMax(t *testing.T) {
	i, v := ArgMax([]float64{0.1, 0.7, 0.2})
	assert.Equal(t, 1, i)
	assert.Equal(t, 0.7, v)

	// ties go to the earlier index
	i, _ = ArgMax([]float64{0.5, 0.5})
	assert.Equal(t, 0, i)
}

func TestSetHelpers(t *testing.T) {
	s := ToSet([]string{"a", "b", "a"})
	assert.Len(t, s, 2)

	u := Unique([]int{1, 1, 2, 1})
	assert.ElementsMatch(t, []int{1, 2}, u)
}
