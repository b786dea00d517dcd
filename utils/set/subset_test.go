package set

import "testing"

func compareResults(t *testing.T, found, expected map[string]struct{}) {
	for str := range expected {
		if _, ok := found[str]; !ok {
			t.Errorf("subset %q expected but not found", str)
		}
	}
	for str := range found {
		if _, ok := expected[str]; !ok {
			t.Errorf("subset %q found but not expected", str)
		}
	}
}

func TestSubset(t *testing.T) {
	s := OfV("A", "B", "C", "D")

	expected := map[string]struct{}{
		"": {}, "A": {}, "B": {}, "C": {}, "D": {},
		"AB": {}, "AC": {}, "AD": {}, "BC": {}, "BD": {}, "CD": {},
		"ABC": {}, "ABD": {}, "ACD": {}, "BCD": {},
		"ABCD": {},
	}

	found := make(map[string]struct{})
	s.ForEach(func(sub []string) {
		str := ""
		for _, v := range sub {
			str += v
		}
		found[str] = struct{}{}
	})

	compareResults(t, found, expected)
}

func TestEmpty(t *testing.T) {
	s := OfV[string]()

	expected := map[string]struct{}{"": {}}
	found := make(map[string]struct{})
	s.ForEach(func(sub []string) {
		str := ""
		for _, v := range sub {
			str += v
		}
		found[str] = struct{}{}
	})

	compareResults(t, found, expected)
}
