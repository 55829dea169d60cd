package config

import "strings"

import "testing"

func TestLoadDefaultsAddresses(t *testing.T) {
	r := strings.NewReader(`{"threads":2,"this_process":1,"processes":3,"addresses":["h0:1","",""]}`)
	c, err := Load(r)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Address(0) != "h0:1" {
		t.Fatalf("Address(0) = %q", c.Address(0))
	}
	if c.Address(1) != "localhost:2102" {
		t.Fatalf("Address(1) = %q", c.Address(1))
	}
}

func TestLoadRejectsOutOfRangeThisProcess(t *testing.T) {
	r := strings.NewReader(`{"threads":1,"this_process":5,"processes":3}`)
	if _, err := Load(r); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadRejectsNonPositiveThreads(t *testing.T) {
	r := strings.NewReader(`{"threads":0,"this_process":0,"processes":1}`)
	if _, err := Load(r); err == nil {
		t.Fatal("expected validation error")
	}
}
