package crawler

import (
	"net/url"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/medkadi/boutik-scrap/internal/models"
)

func TestFilterCandidates(t *testing.T) {
	root, _ := url.Parse("https://boutik.example/")

	anchors := []anchor{
		{Href: "https://boutik.example/p/chaise", Text: "Chaise en bois", HasImage: true},
		{Href: "https://boutik.example/p/chaise#avis", Text: "Chaise en bois", HasImage: true},
		{Href: "https://boutik.example/p/table", Text: "Table basse", HasImage: true},
		{Href: "https://boutik.example/login", Text: "Mon compte ici", HasImage: true},
		{Href: "https://boutik.example/cart", Text: "Voir le panier", HasImage: true},
		{Href: "https://autre.example/p/chaise", Text: "Chaise ailleurs", HasImage: true},
		{Href: "https://boutik.example/p/lampe", Text: "Lampe", HasImage: false},
		{Href: "https://boutik.example/p/x", Text: "ok", HasImage: true},
		{Href: "https://boutik.example/", Text: "Accueil boutique", HasImage: true},
	}

	got := filterCandidates(root, anchors)
	want := []candidate{
		{URL: "https://boutik.example/p/chaise", Text: "Chaise en bois"},
		{URL: "https://boutik.example/p/table", Text: "Table basse"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterCandidates = %+v, want %+v", got, want)
	}
}

func TestNormalize(t *testing.T) {
	c := New(Config{
		SourceSite:          "boutik",
		MaxDescriptionLines: 2,
	}, nil, nil, nil, zap.NewNop())

	cand := candidate{URL: "https://boutik.example/p/chaise", Text: "Chaise"}
	d := detailPage{
		Title: "Chaise en bois massif",
		Text:  "Ligne un\n\nLigne deux\nLigne trois\nEn stock\n129,90 €",
		Images: []string{
			"https://cdn.example/a.jpg",
			"https://cdn.example/a.jpg",
			"https://cdn.example/b.jpg",
		},
	}

	p := c.normalize(cand, d)

	if p.Name != "Chaise en bois massif" {
		t.Errorf("name = %q", p.Name)
	}
	if p.Slug != "chaise-en-bois-massif" {
		t.Errorf("slug = %q", p.Slug)
	}
	if p.Description != "Ligne un\nLigne deux" {
		t.Errorf("description = %q", p.Description)
	}
	if p.Price != 129.90 {
		t.Errorf("price = %v", p.Price)
	}
	if p.TagDelivery != models.TagReadyToShip {
		t.Errorf("tag = %q", p.TagDelivery)
	}
	if p.Stock != models.DefaultStock || p.Status != models.StatusDraft {
		t.Errorf("stock/status = %d/%q", p.Stock, p.Status)
	}
	if len(p.Images) != 2 {
		t.Fatalf("images = %+v", p.Images)
	}
	if p.Images[0] != (models.ImageRef{URL: "https://cdn.example/a.jpg", Alt: "Chaise en bois massif", Sort: 0}) {
		t.Errorf("images[0] = %+v", p.Images[0])
	}
	if p.Metadata[models.MetaSourceKey] != "boutik|chaise-en-bois-massif" {
		t.Errorf("source_key = %v", p.Metadata[models.MetaSourceKey])
	}
	if p.Metadata[models.MetaSourceURL] != cand.URL {
		t.Errorf("source_url = %v", p.Metadata[models.MetaSourceURL])
	}
}

func TestNormalizeFallsBackToAnchorText(t *testing.T) {
	c := New(Config{SourceSite: "boutik"}, nil, nil, nil, zap.NewNop())

	p := c.normalize(candidate{URL: "https://x/p/1", Text: "  \nTable basse\nautre ligne"}, detailPage{})
	if p.Name != "Table basse" {
		t.Errorf("name = %q", p.Name)
	}

	p = c.normalize(candidate{URL: "https://x/p/2", Text: "   "}, detailPage{})
	if p.Name != "Produit" || p.Slug != "produit" {
		t.Errorf("fallback name/slug = %q/%q", p.Name, p.Slug)
	}
}

func TestCapLines(t *testing.T) {
	in := "a\n\n  b  \nc\nd"
	if got := capLines(in, 3); got != "a\nb\nc" {
		t.Errorf("capLines = %q", got)
	}
	if got := capLines("", 3); got != "" {
		t.Errorf("capLines empty = %q", got)
	}
}

func TestImageFileName(t *testing.T) {
	tests := []struct {
		slug string
		idx  int
		url  string
		want string
	}{
		{"chaise", 0, "https://cdn.example/photo.jpg", "chaise-0.jpg"},
		{"chaise", 1, "https://cdn.example/photo.PNG", "chaise-1.png"},
		{"chaise", 2, "https://cdn.example/photo", "chaise-2.jpg"},
		{"chaise", 3, "https://cdn.example/data.verylongext", "chaise-3.jpg"},
		{"chaise", 4, "::notaurl::", "chaise-4.jpg"},
	}
	for _, tt := range tests {
		if got := imageFileName(tt.slug, tt.idx, tt.url); got != tt.want {
			t.Errorf("imageFileName(%q, %d, %q) = %q, want %q", tt.slug, tt.idx, tt.url, got, tt.want)
		}
	}
}
