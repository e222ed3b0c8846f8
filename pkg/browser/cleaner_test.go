package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		maxLength int
		wantTitle string
		want      []string // substrings that should be present
		wantNot   []string // substrings that should NOT be present
		truncated bool
	}{
		{
			name: "removes scripts and styles",
			input: `<html>
				<head>
					<title>Test Page</title>
					<script>alert('evil');</script>
					<style>body { color: red; }</style>
				</head>
				<body>
					<h1 id="main-title">Hello World</h1>
					<p class="intro">This is a test.</p>
				</body>
			</html>`,
			maxLength: 10000,
			wantTitle: "Test Page",
			want:      []string{`<h1 id="main-title">`, "Hello World", `<p class="intro">`, "This is a test."},
			wantNot:   []string{"<script>", "alert", "<style>", "color: red"},
		},
		{
			name: "preserves semantic structure",
			input: `<html><body>
				<header><nav><a href="/home">Home</a></nav></header>
				<main><section id="content"><article><h2>Title</h2></article></section></main>
				<footer><p>Footer</p></footer>
			</body></html>`,
			maxLength: 10000,
			want: []string{
				"<header>", "<nav>", `<a href="/home">`, "<main>",
				`<section id="content">`, "<article>", "<footer>",
			},
		},
		{
			name: "preserves targeting attributes and drops the rest",
			input: `<html><body>
				<form action="/submit" method="post" onsubmit="hijack()">
					<input type="text" name="username" placeholder="Enter name" data-test="field" style="color:blue">
					<button type="submit" class="btn">Go</button>
				</form>
			</body></html>`,
			maxLength: 10000,
			want: []string{
				`<form action="/submit" method="post">`,
				`type="text"`, `name="username"`, `placeholder="Enter name"`,
				`data-test="field"`, `class="btn"`,
			},
			wantNot: []string{"onsubmit", "hijack", "style="},
		},
		{
			name:      "truncates at the byte budget",
			input:     `<html><body><p>` + strings.Repeat("word ", 100) + `</p></body></html>`,
			maxLength: 50,
			want:      []string{"..."},
			truncated: true,
		},
		{
			name:      "void elements have no closing tag",
			input:     `<html><body><img src="/a.png" alt="pic"><br></body></html>`,
			maxLength: 10000,
			want:      []string{`<img src="/a.png" alt="pic">`, "<br>"},
			wantNot:   []string{"</img>", "</br>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := cleanHTML(tt.input, tt.maxLength)
			require.NoError(t, err)

			assert.Equal(t, tt.truncated, result.Truncated)
			if tt.wantTitle != "" {
				assert.Equal(t, tt.wantTitle, result.Title)
			}
			for _, want := range tt.want {
				assert.Contains(t, result.HTML, want)
			}
			for _, not := range tt.wantNot {
				assert.NotContains(t, result.HTML, not)
			}
		})
	}
}

func TestTruncateContent(t *testing.T) {
	assert.Equal(t, "short", truncateContent("short", 100))

	long := strings.Repeat("x", 200)
	got := truncateContent(long, 100)
	assert.Contains(t, got, "[Content truncated: 100 of 200 bytes shown]")
	assert.True(t, strings.HasPrefix(got, strings.Repeat("x", 100)))
}

func TestParseEngine(t *testing.T) {
	for _, valid := range []string{"chromium", "firefox", "webkit"} {
		engine, err := ParseEngine(valid)
		require.NoError(t, err)
		assert.Equal(t, Engine(valid), engine)
	}

	_, err := ParseEngine("netscape")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported browser: netscape")
}
