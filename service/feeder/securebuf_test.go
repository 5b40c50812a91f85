package feeder

import "testing"

func TestWipe(t *testing.T) {
	t.Parallel()

	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	Wipe(buf)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d not wiped: %d", i, b)
		}
	}

	// Must not panic on degenerate inputs.
	Wipe(nil)
	Wipe([]byte{})
}

func TestSampleWipe(t *testing.T) {
	t.Parallel()

	s := &Sample{Data: []byte{0xff, 0xff}, Bits: 16}
	s.Wipe()
	for _, b := range s.Data {
		if b != 0 {
			t.Fatal("sample not wiped")
		}
	}
}
