package render

import "testing"

func TestEscapeHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string", "", ""},
		{"plain text", "Hello, World!", "Hello, World!"},
		{"ampersand", "Tom & Jerry", "Tom &amp; Jerry"},
		{"angle brackets", "a < b > c", "a &lt; b &gt; c"},
		{"double quote", `say "hello"`, "say &quot;hello&quot;"},
		{"single quote", "it's fine", "it&#39;s fine"},
		{"script tag", "<script>alert('xss')</script>", "&lt;script&gt;alert(&#39;xss&#39;)&lt;/script&gt;"},
		{"attribute breakout", `" onmouseover="x`, "&quot; onmouseover=&quot;x"},
		{"unicode preserved", "Hello 世界 🌍", "Hello 世界 🌍"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EscapeHTML(tt.input); got != tt.expected {
				t.Errorf("EscapeHTML(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
