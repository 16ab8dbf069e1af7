package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if v := getVersion(); v == "" {
		t.Error("getVersion() returned empty string")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	if c := getCommit(); c == "" {
		t.Error("getCommit() returned empty string")
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()

	if d := getDate(); d == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	t.Run("prints version, commit and build date", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		cmd := NewVersionCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{})
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		for _, want := range []string{"autoreport version ", "commit:", "built:"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in output: %q", want, out.String())
			}
		}
	})

	t.Run("rejects arguments", func(t *testing.T) {
		t.Parallel()

		cmd := NewVersionCmd()
		cmd.SetOut(&bytes.Buffer{})
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs([]string{"extra"})
		if err := cmd.Execute(); err == nil {
			t.Error("expected error for extra argument")
		}
	})
}
