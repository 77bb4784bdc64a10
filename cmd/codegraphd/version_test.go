package main

import "testing"

func TestVersionCmdPrintsVersionString(t *testing.T) {
	if codegraphdVersion == "" {
		t.Fatal("expected a non-empty codegraphdVersion")
	}
	if versionCmd.Use != "version" {
		t.Fatalf("expected Use 'version', got %q", versionCmd.Use)
	}
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("versionCmd.RunE: %v", err)
	}
}
