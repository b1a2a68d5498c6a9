package media

import "testing"

func TestTypeFromFilename(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"a.png", "image/png"},
		{"a.JPG", "image/jpeg"},
		{"a.jpeg", "image/jpeg"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.WEBP", "image/webp"},
		{"a.unknownext", "image/jpeg"},
		{"noextension", "image/jpeg"},
		{"", "image/jpeg"},
		{"archive.tar.png", "image/png"},
	}

	for _, tc := range cases {
		if got := TypeFromFilename(tc.name); got != tc.want {
			t.Errorf("TypeFromFilename(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
