// Package filekind classifies entries by extension for icons, colors and MIME dispatch.
package filekind

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/CageChen/filehub/internal/snapshot"
	"github.com/h2non/filetype"
)

// Category is the display class of an entry.
type Category string

// Categories.
const (
	Folder   Category = "folder"
	Image    Category = "image"
	Document Category = "document"
	Audio    Category = "audio"
	Video    Category = "video"
	Archive  Category = "archive"
	Code     Category = "code"
	APK      Category = "apk"
	File     Category = "file"
)

// Wildcard is the MIME type handed to generic "open with" resolution.
const Wildcard = "*/*"

var categories = map[Category][]string{
	Image:    {"jpg", "jpeg", "png", "gif", "bmp", "webp", "tiff", "svg"},
	Document: {"pdf", "doc", "docx", "xls", "xlsx", "ppt", "pptx", "txt", "rtf", "odt", "ods", "odp", "md", "csv"},
	Audio:    {"mp3", "wav", "ogg", "m4a", "flac", "aac", "wma", "mid", "midi"},
	Video:    {"mp4", "avi", "mkv", "mov", "wmv", "flv", "webm", "m4v", "3gp"},
	Archive:  {"zip", "rar", "7z", "tar", "gz", "bz2", "xz", "iso", "jar"},
	Code:     {"java", "kt", "xml", "html", "htm", "css", "js", "cpp", "c", "h", "py", "php", "json", "sql", "sh", "bat", "gradle", "yml", "yaml"},
}

// Lookup precedence when an extension appears in several tables.
var categoryOrder = []Category{Image, Document, Audio, Video, Archive, Code}

var byExtension = func() map[string]Category {
	m := make(map[string]Category)
	for i := len(categoryOrder) - 1; i >= 0; i-- {
		for _, ext := range categories[categoryOrder[i]] {
			m[ext] = categoryOrder[i]
		}
	}
	m["apk"] = APK
	return m
}()

var mimeTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"webp": "image/webp",
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/msword",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.ms-excel",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.ms-powerpoint",
	"txt":  "text/plain",
	"mp3":  "audio/mpeg",
	"wav":  "audio/wav",
	"ogg":  "audio/ogg",
	"m4a":  "audio/mp4",
	"mp4":  "video/mp4",
	"avi":  "video/x-msvideo",
	"mkv":  "video/x-matroska",
	"mov":  "video/quicktime",
	"zip":  "application/zip",
	"rar":  "application/x-rar-compressed",
	"7z":   "application/x-7z-compressed",
	"tar":  "application/x-tar",
}

// ForExtension returns the category of a file extension.
func ForExtension(ext string) Category {
	if c, ok := byExtension[strings.ToLower(ext)]; ok {
		return c
	}
	return File
}

// Classify returns the category of an entry.
func Classify(e snapshot.Entry) Category {
	if e.IsDir {
		return Folder
	}
	return ForExtension(e.Extension)
}

// Icon returns the icon resource name for an entry.
func Icon(e snapshot.Entry) string {
	c := Classify(e)
	if c == Document && strings.EqualFold(e.Extension, "pdf") {
		return "ic_pdf"
	}
	return "ic_" + string(c)
}

// Color returns the tint resource name for an entry.
func Color(e snapshot.Entry) string {
	switch c := Classify(e); c {
	case File, APK:
		return "text_primary"
	default:
		return string(c) + "_color"
	}
}

// Badge returns the background resource name for an extension label.
func Badge(ext string) string {
	switch c := ForExtension(ext); c {
	case File, APK:
		return "bg_extension_default"
	default:
		return "bg_extension_" + string(c)
	}
}

// MIMEType returns the MIME type registered for ext, or Wildcard.
func MIMEType(ext string) string {
	if m, ok := mimeTypes[strings.ToLower(ext)]; ok {
		return m
	}
	return Wildcard
}

// sniffLen is the header size filetype needs to match every known type.
const sniffLen = 8192

// Detect returns the MIME type of the file at path. The extension table
// wins; otherwise the file header is sniffed, falling back to Wildcard.
func Detect(path string) string {
	ext := snapshot.Extension(filepath.Base(path))
	if m := MIMEType(ext); m != Wildcard {
		return m
	}
	f, err := os.Open(path)
	if err != nil {
		return Wildcard
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF {
		return Wildcard
	}
	return DetectBytes(ext, head[:n])
}

// DetectBytes is Detect for content already in memory.
func DetectBytes(ext string, content []byte) string {
	if m := MIMEType(ext); m != Wildcard {
		return m
	}
	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown {
		return Wildcard
	}
	return kind.MIME.Value
}
