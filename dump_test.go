package envguard

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func sampleResult() *LoadResult {
	return &LoadResult{
		RequiredKeys: []string{"HOST", "PASSWORD", "EMPTY"},
		Required: map[string]Optional[string]{
			"HOST":     {Value: "localhost", Set: true},
			"PASSWORD": {Value: "secret123", Set: true},
			"EMPTY":    {},
		},
		Provenance: []KeyProvenance{
			{Key: "HOST", Source: "env:HOST"},
			{Key: "PASSWORD", Source: "file:.env"},
			{Key: "EMPTY", Source: "file:.env", Empty: true},
		},
	}
}

func TestDumpResult_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), WithSecrets("PASSWORD")); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	want := "HOST=localhost\nPASSWORD=***redacted***\nEMPTY=\n"
	if got := buf.String(); got != want {
		t.Errorf("DumpResult text output\ngot:  %q\nwant: %q", got, want)
	}
}

func TestDumpResult_WithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), WithSources()); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	output := buf.String()
	expected := []string{
		"HOST=localhost (source: env:HOST)",
		"PASSWORD=secret123 (source: file:.env)",
		"EMPTY= (source: file:.env)",
	}
	for _, line := range expected {
		if !strings.Contains(output, line) {
			t.Errorf("Expected output to contain %q, got: %s", line, output)
		}
	}
}

func TestDumpResult_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), AsJSON(), WithSecrets("PASSWORD")); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}

	if got["HOST"] != "localhost" {
		t.Errorf("HOST = %v, want localhost", got["HOST"])
	}
	if got["PASSWORD"] != "***redacted***" {
		t.Errorf("PASSWORD = %v, want redacted", got["PASSWORD"])
	}
	if v, ok := got["EMPTY"]; !ok || v != nil {
		t.Errorf("EMPTY = %v (present=%v), want null", v, ok)
	}
	if strings.Contains(buf.String(), "secret123") {
		t.Errorf("secret leaked into output: %s", buf.String())
	}
}

func TestDumpResult_JSONWithSources(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), AsJSON(), WithSources(), WithIndent("")); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	output := strings.TrimSpace(buf.String())
	if strings.Contains(output, "\n") {
		t.Errorf("expected compact JSON, got: %s", output)
	}

	var got map[string]jsonEntry
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if got["HOST"].Source != "env:HOST" || got["HOST"].Value == nil || *got["HOST"].Value != "localhost" {
		t.Errorf("unexpected HOST entry: %+v", got["HOST"])
	}
	if got["EMPTY"].Value != nil {
		t.Errorf("EMPTY value should be null, got %q", *got["EMPTY"].Value)
	}
}

func TestDumpResult_JSONManifestOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), AsJSON(), WithIndent("")); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	want := `{"HOST":"localhost","PASSWORD":"secret123","EMPTY":null}` + "\n"
	if got := buf.String(); got != want {
		t.Errorf("DumpResult JSON output\ngot:  %q\nwant: %q", got, want)
	}
}

func TestDumpResult_JSONIndentedManifestOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, sampleResult(), AsJSON(), WithSources()); err != nil {
		t.Fatalf("DumpResult failed: %v", err)
	}

	want := `{
  "HOST": {
    "value": "localhost",
    "source": "env:HOST"
  },
  "PASSWORD": {
    "value": "secret123",
    "source": "file:.env"
  },
  "EMPTY": {
    "value": null,
    "source": "file:.env"
  }
}
`
	if got := buf.String(); got != want {
		t.Errorf("DumpResult JSON output\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestDumpResult_NilResult(t *testing.T) {
	var buf bytes.Buffer
	if err := DumpResult(&buf, nil); err == nil {
		t.Error("expected error for nil result")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestDumpResult_WriteError(t *testing.T) {
	for _, opts := range [][]DumpOption{nil, {AsJSON()}} {
		err := DumpResult(failingWriter{}, sampleResult(), opts...)
		if err == nil || !strings.Contains(err.Error(), "disk full") {
			t.Errorf("expected write error, got %v", err)
		}
	}
}
