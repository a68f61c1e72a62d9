package tool

import (
	"testing"
	"time"
)

const sampleResultsPage = `
<div class="result">
  <a rel="nofollow" class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Flstm&amp;rut=abc">What is an <b>LSTM</b>?</a>
  <a class="result__snippet" href="#">Long short-term memory is a <b>recurrent</b> network cell.</a>
</div>
<div class="result">
  <a rel="nofollow" class="result__a" href="https://papers.example.com/attention">Attention Is All You Need</a>
  <a class="result__snippet" href="#">The transformer architecture.</a>
</div>
<div class="result">
  <a rel="nofollow" class="result__a" href="https://third.example.com/x">Third result</a>
  <a class="result__snippet" href="#">Another one.</a>
</div>
`

func TestParseSearchResults(t *testing.T) {
	hits := parseSearchResults(sampleResultsPage, 5)
	if len(hits) != 3 {
		t.Fatalf("parsed %d hits, want 3", len(hits))
	}

	if hits[0].Title != "What is an LSTM?" {
		t.Errorf("title = %q", hits[0].Title)
	}
	if hits[0].URL != "https://example.org/lstm" {
		t.Errorf("redirect not unwrapped: %q", hits[0].URL)
	}
	if hits[0].Snippet != "Long short-term memory is a recurrent network cell." {
		t.Errorf("snippet = %q", hits[0].Snippet)
	}
	if hits[0].Source != "Web Search" {
		t.Errorf("source = %q", hits[0].Source)
	}
	if hits[1].URL != "https://papers.example.com/attention" {
		t.Errorf("direct url = %q", hits[1].URL)
	}
}

func TestParseSearchResultsLimit(t *testing.T) {
	hits := parseSearchResults(sampleResultsPage, 2)
	if len(hits) != 2 {
		t.Fatalf("parsed %d hits, want limit 2", len(hits))
	}
}

func TestWebSearchConfiguredResultCap(t *testing.T) {
	ws := NewWebSearchTool(time.Second, 3)
	if ws.GetDefaults()["num_results"] != 3 {
		t.Errorf("num_results default = %v, want configured cap 3", ws.GetDefaults()["num_results"])
	}

	// Unconfigured cap falls back to 5
	ws = NewWebSearchTool(time.Second, 0)
	if ws.GetDefaults()["num_results"] != 5 {
		t.Errorf("num_results default = %v, want 5", ws.GetDefaults()["num_results"])
	}
}

func TestResolveResultURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fgo.dev%2Fdoc&rut=x", "https://go.dev/doc"},
		{"https://direct.example.com/page", "https://direct.example.com/page"},
		{"//bare.example.com/path", "https://bare.example.com/path"},
	}
	for _, tc := range cases {
		if got := resolveResultURL(tc.in); got != tc.want {
			t.Errorf("resolveResultURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCleanHTML(t *testing.T) {
	if got := cleanHTML("  <b>bold</b> &amp; plain  "); got != "bold & plain" {
		t.Errorf("cleanHTML = %q", got)
	}
}
