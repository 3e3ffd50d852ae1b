package filekind

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CageChen/filehub/internal/snapshot"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		entry snapshot.Entry
		want  Category
		icon  string
		color string
	}{
		{snapshot.Entry{Name: "docs", IsDir: true}, Folder, "ic_folder", "folder_color"},
		{snapshot.Entry{Name: "a.PNG", Extension: "png"}, Image, "ic_image", "image_color"},
		{snapshot.Entry{Name: "r.pdf", Extension: "pdf"}, Document, "ic_pdf", "document_color"},
		{snapshot.Entry{Name: "n.md", Extension: "md"}, Document, "ic_document", "document_color"},
		{snapshot.Entry{Name: "s.flac", Extension: "flac"}, Audio, "ic_audio", "audio_color"},
		{snapshot.Entry{Name: "m.mkv", Extension: "mkv"}, Video, "ic_video", "video_color"},
		{snapshot.Entry{Name: "b.7z", Extension: "7z"}, Archive, "ic_archive", "archive_color"},
		{snapshot.Entry{Name: "main.py", Extension: "py"}, Code, "ic_code", "code_color"},
		{snapshot.Entry{Name: "app.apk", Extension: "apk"}, APK, "ic_apk", "text_primary"},
		{snapshot.Entry{Name: "blob", Extension: ""}, File, "ic_file", "text_primary"},
	}
	for _, tt := range tests {
		if got := Classify(tt.entry); got != tt.want {
			t.Errorf("Classify(%s) = %s, want %s", tt.entry.Name, got, tt.want)
		}
		if got := Icon(tt.entry); got != tt.icon {
			t.Errorf("Icon(%s) = %s, want %s", tt.entry.Name, got, tt.icon)
		}
		if got := Color(tt.entry); got != tt.color {
			t.Errorf("Color(%s) = %s, want %s", tt.entry.Name, got, tt.color)
		}
	}
}

func TestBadge(t *testing.T) {
	if got := Badge(""); got != "bg_extension_default" {
		t.Errorf("Badge(\"\") = %s", got)
	}
	if got := Badge("JSON"); got != "bg_extension_code" {
		t.Errorf("Badge(JSON) = %s", got)
	}
}

func TestMIMEType(t *testing.T) {
	tests := map[string]string{
		"jpg":  "image/jpeg",
		"JPEG": "image/jpeg",
		"docx": "application/msword",
		"m4a":  "audio/mp4",
		"7z":   "application/x-7z-compressed",
		"flac": Wildcard,
		"":     Wildcard,
	}
	for ext, want := range tests {
		if got := MIMEType(ext); got != want {
			t.Errorf("MIMEType(%q) = %q, want %q", ext, got, want)
		}
	}
	if len(mimeTypes) != 26 {
		t.Errorf("expected 26 known extensions, got %d", len(mimeTypes))
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	noExt := filepath.Join(dir, "image")
	if err := os.WriteFile(noExt, png, 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Detect(noExt); got != "image/png" {
		t.Errorf("Detect(sniffed png) = %q", got)
	}

	plain := filepath.Join(dir, "unknown.xyz")
	if err := os.WriteFile(plain, []byte("just words"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := Detect(plain); got != Wildcard {
		t.Errorf("Detect(unknown) = %q", got)
	}

	if got := Detect(filepath.Join(dir, "clip.mov")); got != "video/quicktime" {
		t.Errorf("Detect should trust the table without reading, got %q", got)
	}
	if got := Detect(filepath.Join(dir, "missing")); got != Wildcard {
		t.Errorf("Detect(missing) = %q", got)
	}
}
