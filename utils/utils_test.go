package utils

import (
	"strings"
	"testing"
	"time"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"go", "go"},
		{" go , web ,, ", "go|web"},
		{"a,a,b", "a|a|b"},
		{",,,", ""},
	}
	for _, tt := range tests {
		got := SplitTags(tt.in)
		if got == nil {
			t.Fatalf("SplitTags(%q) = nil, want non-nil", tt.in)
		}
		if s := strings.Join(got, "|"); s != tt.want {
			t.Errorf("SplitTags(%q) = %q, want %q", tt.in, s, tt.want)
		}
	}
	if got := JoinTags([]string{"a", "b"}); got != "a, b" {
		t.Errorf("JoinTags() = %q, want %q", got, "a, b")
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"<p>Hello <b>world</b></p>", "Hello world"},
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"<script>alert(1)</script>ok", "ok"},
		{"  spaced\n\nout  ", "spaced out"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExcerpt(t *testing.T) {
	if got := Excerpt("<p>short</p>", 10); got != "short" {
		t.Errorf("Excerpt() = %q, want short", got)
	}
	if got := Excerpt("abcdef ghij", 6); got != "abcdef…" {
		t.Errorf("Excerpt() = %q, want abcdef…", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"heading", "# Hello", []string{`<h1 id="hello">Hello</h1>`}},
		{"emphasis", "some **bold** text", []string{"<strong>bold</strong>"}},
		{"inline html kept", "<div class=\"note\">raw</div>", []string{`<div class="note">raw</div>`}},
		{"gfm table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderMarkdown(tt.in)
			if err != nil {
				t.Fatalf("RenderMarkdown() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("RenderMarkdown(%q) = %q, want it to contain %q", tt.in, got, w)
				}
			}
		})
	}
}

func TestCheckAdminToken(t *testing.T) {
	hash, err := HashAdminToken("hunter2")
	if err != nil {
		t.Fatalf("HashAdminToken() error = %v", err)
	}
	tests := []struct {
		name      string
		presented string
		plain     string
		hash      string
		want      bool
	}{
		{"plain match", "admin123", "admin123", "", true},
		{"plain mismatch", "admin12", "admin123", "", false},
		{"empty presented", "", "", "", false},
		{"nothing configured", "x", "", "", false},
		{"hash match", "hunter2", "", hash, true},
		{"hash wins over plain", "admin123", "admin123", hash, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckAdminToken(tt.presented, tt.plain, tt.hash); got != tt.want {
				t.Errorf("CheckAdminToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAdminTokenRoundTrip(t *testing.T) {
	signed, claims, err := GenerateAdminToken("secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAdminToken() error = %v", err)
	}
	parsed, err := ParseAdminToken("secret", signed)
	if err != nil {
		t.Fatalf("ParseAdminToken() error = %v", err)
	}
	if parsed.ID != claims.ID || parsed.Role != "admin" {
		t.Errorf("ParseAdminToken() = %+v, want id %s", parsed, claims.ID)
	}

	if _, err := ParseAdminToken("other", signed); err == nil {
		t.Error("ParseAdminToken(wrong secret) error = nil")
	}
	expired, _, _ := GenerateAdminToken("secret", -time.Minute)
	if _, err := ParseAdminToken("secret", expired); err == nil {
		t.Error("ParseAdminToken(expired) error = nil")
	}
}

func TestRevokeToken(t *testing.T) {
	RevokeToken("tok-1", time.Now().Add(time.Minute))
	if !IsTokenRevoked("tok-1") {
		t.Error("IsTokenRevoked(tok-1) = false, want true")
	}
	RevokeToken("tok-2", time.Now().Add(-time.Minute))
	if IsTokenRevoked("tok-2") {
		t.Error("IsTokenRevoked(already expired) = true, want false")
	}
	if IsTokenRevoked("never") {
		t.Error("IsTokenRevoked(never) = true")
	}
}

func TestRedactToken(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"tag=go":               "tag=go",
		"token=admin123":       "token=REDACTED",
		"tag=go&token=s&x=1":   "tag=go&token=REDACTED&x=1",
		"search=token%3Dplain": "search=token%3Dplain",
	}
	for in, want := range tests {
		if got := redactToken(in); got != want {
			t.Errorf("redactToken(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCacheKeys(t *testing.T) {
	if got := PostListCacheKey("React Router"); got != "cache:posts:list:tag=React+Router" {
		t.Errorf("PostListCacheKey() = %q", got)
	}
	if got := PostDetailCacheKey("a-b"); got != "cache:post:slug:a-b" {
		t.Errorf("PostDetailCacheKey() = %q", got)
	}
	for _, k := range []string{PostListCacheKey(""), PostDetailCacheKey("x"), TagsCacheKey()} {
		if !strings.HasPrefix(k, CachePrefix) {
			t.Errorf("key %q lacks prefix %q", k, CachePrefix)
		}
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]string{
		"":      "info",
		"debug": "debug",
		"warn":  "warn",
		"bogus": "info",
	}
	for in, want := range tests {
		if got := parseLevel(in).String(); got != want {
			t.Errorf("parseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}
