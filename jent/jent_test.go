package jent

import (
	"bytes"
	"testing"
)

func TestInit(t *testing.T) {
	t.Parallel()

	if err := Init(); err != nil {
		t.Fatalf("init failed: %s", err)
	}
}

func TestCollectorRead(t *testing.T) {
	t.Parallel()

	c, err := NewCollector(0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Free()

	buf := make([]byte, 64)
	n, err := c.Read(buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(buf) {
		t.Errorf("expected %d bytes, got %d", len(buf), n)
	}
	if bytes.Equal(buf, make([]byte, len(buf))) {
		t.Error("collector produced all-zero output")
	}

	// Consecutive reads must differ.
	buf2 := make([]byte, 64)
	if _, err := c.Read(buf2); err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(buf, buf2) {
		t.Error("consecutive reads produced identical output")
	}
}

func TestCollectorReadOddSizes(t *testing.T) {
	t.Parallel()

	c, err := NewCollector(0)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Free()

	for _, size := range []int{1, 31, 32, 33, 100} {
		buf := make([]byte, size)
		n, err := c.Read(buf)
		if err != nil {
			t.Fatal(err)
		}
		if n != size {
			t.Errorf("size %d: expected %d bytes, got %d", size, size, n)
		}
	}
}

func TestCollectorFree(t *testing.T) {
	t.Parallel()

	c, err := NewCollector(0)
	if err != nil {
		t.Fatal(err)
	}

	c.Free()
	c.Free() // idempotent

	for _, b := range c.pool {
		if b != 0 {
			t.Fatal("pool not wiped after free")
		}
	}

	if n, err := c.Read(make([]byte, 8)); err == nil || n >= 0 {
		t.Error("read after free should fail with negative count")
	}
}
