package labels

import (
	"reflect"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"empty", "", nil},
		{"single", "main:\n", []string{"main"}},
		{
			"count example",
			"\ncount:\n    li %max.s, 10\ncount_i_init:\n    li %i, 0\ncount_i_cond:\n",
			[]string{"count", "count_i_init", "count_i_cond"},
		},
		{"indented is not a label", "    loop:\n\tdone:\n", nil},
		{"label with trailing code", "main:  li $t0, 1\n", []string{"main"}},
		{"empty name", ":\n", []string{""}},
		{"duplicates kept", "a:\nb:\na:\n", []string{"a", "b", "a"}},
		{"no newline at end", "x:\ny:", []string{"x", "y"}},
		{"directive is not a label", ".data\n.text\n", nil},
		{"comment line", "# main:\n", nil},
		{"crlf", "main:\r\nloop:\r\n", []string{"main", "loop"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Extract(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsWordRune(t *testing.T) {
	for _, r := range "aZ09_é" {
		if !IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = false, want true", r)
		}
	}
	for _, r := range " .:%$#-\t" {
		if IsWordRune(r) {
			t.Errorf("IsWordRune(%q) = true, want false", r)
		}
	}
}
