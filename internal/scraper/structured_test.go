package scraper

import "testing"

func TestReadProductBlock(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		wantOK   bool
		wantName string
	}{
		{
			name:     "single object",
			html:     page(ldJSON(`{"@type":"Product","name":"Cabin"}`)),
			wantOK:   true,
			wantName: "Cabin",
		},
		{
			name:     "list of objects",
			html:     page(ldJSON(`[{"@type":"BreadcrumbList"},{"@type":"Product","name":"Trunk"}]`)),
			wantOK:   true,
			wantName: "Trunk",
		},
		{
			name:     "malformed block skipped",
			html:     page(ldJSON(`{"@type":"Product",`) + ldJSON(`{"@type":"Product","name":"Second"}`)),
			wantOK:   true,
			wantName: "Second",
		},
		{
			name:     "trailing data skipped",
			html:     page(ldJSON(`{"@type":"Product","name":"Broken"} trailing`) + ldJSON(`{"@type":"Product","name":"Clean"}`)),
			wantOK:   true,
			wantName: "Clean",
		},
		{
			name:   "second value skipped",
			html:   page(ldJSON(`{"@type":"Product","name":"Twice"} {"@type":"Product"}`)),
			wantOK: false,
		},
		{
			name:     "first product wins",
			html:     page(ldJSON(`{"@type":"Product","name":"First"}`) + ldJSON(`{"@type":"Product","name":"Later"}`)),
			wantOK:   true,
			wantName: "First",
		},
		{
			name:     "type list",
			html:     page(ldJSON(`{"@type":["Thing","Product"],"name":"Multi"}`)),
			wantOK:   true,
			wantName: "Multi",
		},
		{
			name:     "graph container",
			html:     page(ldJSON(`{"@graph":[{"@type":"WebPage"},{"@type":"Product","name":"Graph"}]}`)),
			wantOK:   true,
			wantName: "Graph",
		},
		{
			name:   "no product",
			html:   page(ldJSON(`{"@type":"Organization"}`)),
			wantOK: false,
		},
		{
			name:   "no blocks",
			html:   page(`<p>plain</p>`),
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, ok := ReadProductBlock(mustDoc(t, tt.html))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && block.String("name") != tt.wantName {
				t.Errorf("name = %q, want %q", block.String("name"), tt.wantName)
			}
		})
	}
}

func TestProductBlockKeepsNumberLiterals(t *testing.T) {
	block, ok := ReadProductBlock(mustDoc(t, page(ldJSON(`{"@type":"Product","sku":12345,"width":55.0}`))))
	if !ok {
		t.Fatal("expected product block")
	}
	if got := block.String("sku"); got != "12345" {
		t.Errorf("sku = %q", got)
	}
	if got := block.String("width"); got != "55.0" {
		t.Errorf("width = %q", got)
	}
}
