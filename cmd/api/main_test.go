package main

import "testing"

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("APP_CONFIG", "")
	if got := defaultConfigPath(); got != "configs/config.yaml" {
		t.Fatalf("unexpected default config path %q", got)
	}

	t.Setenv("APP_CONFIG", "/etc/swipe/config.yaml")
	if got := defaultConfigPath(); got != "/etc/swipe/config.yaml" {
		t.Fatalf("expected APP_CONFIG to win, got %q", got)
	}
}
