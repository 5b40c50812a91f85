package service

import (
	"testing"
)

func TestNewInstance(t *testing.T) { //nolint:paralleltest
	instance, err := New(&Config{
		AuxBitsPerByte: 8,
	})
	if err != nil {
		t.Fatal(err)
	}
	if instance.Feeder() == nil {
		t.Error("feeder module missing")
	}
	if instance.Metrics() == nil {
		t.Error("metrics module missing")
	}
}
