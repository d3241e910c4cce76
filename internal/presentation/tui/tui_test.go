package tui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, "1.2.3")

	out := buf.String()
	if !strings.Contains(out, "v1.2.3") {
		t.Errorf("banner is missing the version:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("a buffer must not receive escape sequences:\n%q", out)
	}
}

func TestIsTerminal(t *testing.T) {
	if IsTerminal(&bytes.Buffer{}) {
		t.Error("a buffer is not a terminal")
	}
}

func TestNewRenderer(t *testing.T) {
	render, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	out, err := render("# Actions\n\n| Type | Path |\n|---|---|\n| COUNT_SET | count |\n")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "COUNT_SET") {
		t.Errorf("rendered output lost the table content:\n%s", out)
	}
}
