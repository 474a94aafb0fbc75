package pipeline

import "testing"

func TestGoqueryExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"heading", "<h1>Foo</h1>", "Foo"},
		{"empty", "", ""},
		{"entities are decoded", "<p>Tom &amp; Jerry &lt;3</p>", "Tom & Jerry <3"},
		{"paragraphs", "<p>a</p><p>b</p>", "a\n\nb"},
		{"line break", "<p>a<br>b</p>", "a\nb"},
		{"leading line break", "<br><p>a</p>", "a"},
		{"whitespace collapses", "<p>  one \n\t two  </p>", "one two"},
		{"inline elements", "<p>a <b>bold</b> <i>word</i></p>", "a bold word"},
		{"list items", "<ul><li>one</li><li>two</li></ul>", "* one\n* two"},
		{"link", `<p>Visit <a href="https://example.com">site</a></p>`, "Visit site [https://example.com]"},
		{"link same as label", `<a href="https://example.com">https://example.com</a>`, "https://example.com"},
		{"anchor link", `<a href="#top">Top</a>`, "Top"},
		{"image alt", `<p><img src="x.png" alt="Logo"> text</p>`, "Logo text"},
		{"table cells", "<table><tr><td>a</td><td>b</td></tr><tr><td>c</td><td>d</td></tr></table>", "a b\nc d"},
		{"preformatted", "<pre>x  y\n z</pre>", "x  y\n z"},
		{
			name:  "non-rendered elements",
			input: "<html><head><title>T</title><style>h1{}</style></head><body><script>x()</script><p>a</p></body></html>",
			want:  "a",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := GoqueryExtractor{}.ExtractText(tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtractText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
