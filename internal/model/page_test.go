package model

import "testing"

// TestParsePageRef verifies page ID extraction from bare IDs and wiki URLs.
func TestParsePageRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{
			name: "bare numeric ID",
			ref:  "123456",
			want: "123456",
		},
		{
			name: "spaces URL",
			ref:  "https://site.example.net/wiki/spaces/ENG/pages/123456/Some+Title",
			want: "123456",
		},
		{
			name: "viewpage URL",
			ref:  "https://site.example.net/wiki/pages/viewpage.action?pageId=987654",
			want: "987654",
		},
		{
			name: "unrecognized reference returned unchanged",
			ref:  "not-a-page",
			want: "not-a-page",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParsePageRef(tt.ref); got != tt.want {
				t.Errorf("ParsePageRef(%q) = %q, want %q", tt.ref, got, tt.want)
			}
		})
	}
}
