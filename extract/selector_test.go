package extract

import (
	"strings"
	"testing"
)

func TestApplySelector(t *testing.T) {
	html := `<html><body><nav>menu</nav><article id="main"><p>kept</p></article></body></html>`

	out, err := ApplySelector(html, "#main")
	if err != nil {
		t.Fatalf("ApplySelector: %v", err)
	}
	if !strings.Contains(out, "kept") {
		t.Errorf("selected output missing matched content: %q", out)
	}
	if strings.Contains(out, "menu") {
		t.Errorf("selected output should exclude unmatched elements: %q", out)
	}
}

func TestApplySelector_NoMatchFallsBack(t *testing.T) {
	html := `<html><body><p>original</p></body></html>`

	out, err := ApplySelector(html, ".does-not-exist")
	if err != nil {
		t.Fatalf("ApplySelector: %v", err)
	}
	if out != html {
		t.Errorf("no-match should return original HTML, got %q", out)
	}
}

func TestApplySelector_InvalidSelector(t *testing.T) {
	if _, err := ApplySelector("<html></html>", "[[["); err == nil {
		t.Error("invalid selector should return an error")
	}
}
