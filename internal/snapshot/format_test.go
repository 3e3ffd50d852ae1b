package snapshot

import (
	"testing"
	"time"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{-5, "0 B"},
		{0, "0 B"},
		{1, "1 B"},
		{1023, "1023 B"},
		{1024, "1 KB"},
		{1536, "1.5 KB"},
		{10 * 1024 * 1024, "10 MB"},
		{1073741824, "1 GB"},
		{1 << 40, "1 TB"},
		{2048 << 40, "2,048 TB"},
	}
	for _, tt := range tests {
		if got := FormatSize(tt.in); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"report.PDF", "pdf"},
		{"archive.tar.gz", "gz"},
		{".bashrc", ""},
		{"Makefile", ""},
		{"trailing.", ""},
		{".config.YAML", "yaml"},
	}
	for _, tt := range tests {
		if got := Extension(tt.in); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatDate(t *testing.T) {
	ts := time.Date(2024, 3, 9, 7, 5, 3, 0, time.Local)
	if got := FormatDate(ts); got != "2024-03-09 07:05:03" {
		t.Errorf("FormatDate = %q", got)
	}
}
