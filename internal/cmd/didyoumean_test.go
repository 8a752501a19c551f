package cmd

import "testing"

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "b", 1},
		{"kitten", "sitting", 3},
		{"remind", "remind", 0},
		{"cancle", "cancel", 2},
	}
	for _, tt := range tests {
		if got := editDistance(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []string{"signature-requests", "sr", "reusable-forms", "forms", "account", "team", "version"}
	tests := []struct {
		input string
		want  string
	}{
		{"acount", "account"},
		{"fomrs", "forms"},
		{"TEAM", "team"},
		{"verison", "version"},
		{"xyzzy-nothing", ""},
	}
	for _, tt := range tests {
		if got := suggestCommand(tt.input, commands); got != tt.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flags := []string{"--signer", "--subject", "--test-mode", "--file-url"}
	tests := []struct {
		input string
		want  string
	}{
		{"--singer", "--signer"},
		{"--test-mod", "--test-mode"},
		{"--fileurl", "--file-url"},
		{"--", ""},
		{"--completely-different", ""},
	}
	for _, tt := range tests {
		if got := suggestFlag(tt.input, flags); got != tt.want {
			t.Errorf("suggestFlag(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
