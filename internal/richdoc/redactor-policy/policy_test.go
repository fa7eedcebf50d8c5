package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplaceLegacyTags(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "font color and size",
			in:       `<font color="red" size="5">x</font>`,
			contains: []string{`<span style="color: red; font-size: 24px">x</span>`},
			excludes: []string{"<font"},
		},
		{
			name:     "font without attributes",
			in:       `<font face="Arial">x</font>`,
			contains: []string{`<span>x</span>`},
		},
		{
			name:     "center",
			in:       `<center>x</center>`,
			contains: []string{`<p style="text-align: center">x</p>`},
		},
		{
			name:     "nested font",
			in:       `<p><b><font color="#00f">x</font></b></p>`,
			contains: []string{`<b><span style="color: #00f">x</span></b>`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ReplaceLegacyTags(tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, res, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, res, s)
			}
		})
	}
	assert.Empty(t, ReplaceLegacyTags(""))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		contains []string
		excludes []string
	}{
		{
			name:     "script",
			in:       `<p>a</p><script>alert(1)</script>`,
			contains: []string{"<p>a</p>"},
			excludes: []string{"script", "alert"},
		},
		{
			name:     "javascript link",
			in:       `<a href="javascript:alert(1)">x</a>`,
			excludes: []string{"javascript"},
		},
		{
			name:     "allowed styles",
			in:       `<span style="color: #ff0000">x</span>`,
			contains: []string{"color", "#ff0000"},
		},
		{
			name:     "forbidden style",
			in:       `<span style="position: fixed">x</span>`,
			excludes: []string{"position"},
		},
		{
			name:     "youtube iframe",
			in:       `<iframe src="https://www.youtube.com/embed/abc"></iframe>`,
			contains: []string{"youtube.com/embed/abc"},
		},
		{
			name:     "foreign iframe",
			in:       `<iframe src="https://evil.example/x"></iframe>`,
			excludes: []string{"evil.example"},
		},
		{
			name:     "figure",
			in:       `<figure><img src="https://a.b/c.png" alt="c"><figcaption>cap</figcaption></figure>`,
			contains: []string{"<figure>", "<figcaption>cap</figcaption>", `alt="c"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Sanitize(tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, res, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, res, s)
			}
		})
	}
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "ab", StripTags("<p>a<b>b</b></p>"))
}
