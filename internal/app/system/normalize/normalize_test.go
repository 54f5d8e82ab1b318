package normalize

import (
	"reflect"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct{ in, want string }{
		{"  Ada@Example.COM ", "ada@example.com"},
		{"plain@host", "plain@host"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Email(tt.in); got != tt.want {
			t.Errorf("Email(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTags(t *testing.T) {
	got := Tags([]string{" api ", "api", "", "Backend", "api"})
	want := []string{"api", "Backend"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tags = %v, want %v", got, want)
	}
	if len(Tags(nil)) != 0 {
		t.Error("Tags(nil) not empty")
	}
}
