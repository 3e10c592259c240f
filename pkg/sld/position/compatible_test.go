package position

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCompatible(t *testing.T) {
	tests := []struct {
		a, b []int
		want bool
	}{
		{[]int{1, 0}, []int{1, 2}, true},
		{[]int{1, 0}, []int{0, 2}, true},
		{[]int{1, 2}, []int{2, 2}, false},
		{[]int{0, 0}, []int{3, 4}, true},
	}
	for _, tt := range tests {
		if got := compatible(tt.a, tt.b); got != tt.want {
			t.Errorf("compatible(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCompatibleProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	column := gen.SliceOfN(4, gen.IntRange(0, 3))

	properties.Property("symmetric", prop.ForAll(
		func(a, b []int) bool { return compatible(a, b) == compatible(b, a) },
		column, column,
	))
	properties.Property("all-zero vector is compatible with anything", prop.ForAll(
		func(a []int) bool { return compatible(make([]int, len(a)), a) },
		column,
	))
	properties.Property("a vector is compatible with itself", prop.ForAll(
		func(a []int) bool { return compatible(a, a) },
		column,
	))

	properties.TestingRun(t)
}
