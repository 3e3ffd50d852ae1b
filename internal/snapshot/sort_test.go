package snapshot

import (
	"testing"
	"time"
)

func file(name string, size int64, mtime int64) Entry {
	return Entry{Name: name, Size: size, ModTime: time.UnixMilli(mtime), Extension: Extension(name)}
}

func dir(name string) Entry {
	return Entry{Name: name, IsDir: true, Extension: Extension(name)}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSort(t *testing.T) {
	input := []Entry{
		file("banana.txt", 10, 50),
		dir("zeta"),
		file("Apple.MD", 500, 100),
		file("cherry", 20, 75),
		dir("Alpha"),
		file("data.csv", 10, 50),
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByName, []string{"Alpha", "zeta", "Apple.MD", "banana.txt", "cherry", "data.csv"}},
		{SortBySize, []string{"zeta", "Alpha", "Apple.MD", "cherry", "banana.txt", "data.csv"}},
		{SortByDate, []string{"zeta", "Alpha", "Apple.MD", "cherry", "banana.txt", "data.csv"}},
		{SortByType, []string{"zeta", "Alpha", "cherry", "data.csv", "Apple.MD", "banana.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got := names(Sort(input, tt.key))
			if !equal(got, tt.want) {
				t.Errorf("Sort(%s) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

func TestSortDirectoriesFirstForEveryKey(t *testing.T) {
	input := []Entry{file("a", 1000, 9999), dir("z"), file("b", 1, 1), dir("y")}
	for _, key := range []SortKey{SortByName, SortBySize, SortByDate, SortByType} {
		sorted := Sort(input, key)
		seenFile := false
		for _, e := range sorted {
			if !e.IsDir {
				seenFile = true
			} else if seenFile {
				t.Errorf("%s: directory %q after a file in %v", key, e.Name, names(sorted))
			}
		}
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	input := []Entry{file("b", 1, 1), file("a", 1, 1)}
	_ = Sort(input, SortByName)
	if input[0].Name != "b" {
		t.Error("Sort must not reorder its input")
	}
}

func TestSortIsStable(t *testing.T) {
	input := []Entry{file("x.go", 5, 1), file("y.go", 5, 1), file("w.go", 5, 1)}
	for _, key := range []SortKey{SortBySize, SortByDate, SortByType} {
		got := names(Sort(input, key))
		if !equal(got, []string{"x.go", "y.go", "w.go"}) {
			t.Errorf("%s: expected input order for ties, got %v", key, got)
		}
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortByName, false},
		{"name", SortByName, false},
		{"SIZE", SortBySize, false},
		{" date ", SortByDate, false},
		{"type", SortByType, false},
		{"color", SortByName, true},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSortKey(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseSortKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	var k SortKey
	if err := k.UnmarshalText([]byte("date")); err != nil || k != SortByDate {
		t.Errorf("UnmarshalText(date) = %v, %v", k, err)
	}
}
