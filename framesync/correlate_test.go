package framesync

import (
	"math/rand"
	"testing"
)

func TestCorrelateLock(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	data := make([]int8, 500)
	for i := range data {
		if rng.Intn(2) == 0 {
			data[i] = -127
		} else {
			data[i] = 127
		}
	}

	const offset = 137
	for bit := 0; bit < PatternLen; bit++ {
		if patterns[bit][0] == 0xFF {
			data[offset+bit] = 127
		} else {
			data[offset+bit] = -127
		}
	}

	res := Correlate(data)
	if res.Best != 0 {
		t.Fatalf("Best = %d, want 0", res.Best)
	}
	if res.Position[0] != offset {
		t.Fatalf("Position[0] = %d, want %d", res.Position[0], offset)
	}
	if res.Correlation[0] < 56 {
		t.Fatalf("Correlation[0] = %d, want >= 56", res.Correlation[0])
	}
}

func TestCorrelateShortInput(t *testing.T) {
	res := Correlate(make([]int8, 10))
	if res.Correlation != [8]int{} {
		t.Fatalf("expected zero result for short input, got %+v", res)
	}
}

func TestCorrTabInvariant(t *testing.T) {
	for d := 0; d < 256; d++ {
		for _, p := range []int{0x00, 0xFF} {
			want := byte(0)
			if (d > 127 && p == 0x00) || (d <= 127 && p == 0xFF) {
				want = 1
			}
			if corrTab[d][p] != want {
				t.Fatalf("corrTab[%d][%#x] = %d, want %d", d, p, corrTab[d][p], want)
			}
		}
	}
}
