package extract

import (
	"reflect"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Chaise en bois", "chaise-en-bois"},
		{"Théière Émaillée N°5", "theiere-emaillee-n-5"},
		{"  Canapé -- 3 places!  ", "canape-3-places"},
		{"ALL CAPS", "all-caps"},
		{"déjà-vu", "deja-vu"},
		{"", "produit"},
		{"???", "produit"},
		{"-----", "produit"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSlugifyIdempotent(t *testing.T) {
	inputs := []string{"Théière Émaillée", "plain-slug", "Weird   Spacing"}
	for _, in := range inputs {
		once := Slugify(in)
		if twice := Slugify(once); twice != once {
			t.Errorf("Slugify not idempotent on %q: %q then %q", in, once, twice)
		}
	}
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		found bool
	}{
		{"Prix: 129,90 €", 129.90, true},
		{"129.90 EUR", 129.90, true},
		{"49 $", 49, true},
		{"1 299,50 €", 1299.50, true},
		{"1.299,50 €", 1299.50, true},
		{"1 299 €", 1299, true},
		{"2500 MAD", 2500, true},
		{"120 dhs la pièce", 120, true},
		{"no price here", 0, false},
		{"reference 12345", 0, false},
	}
	for _, tt := range tests {
		got, found := Price(tt.in)
		if found != tt.found || got != tt.want {
			t.Errorf("Price(%q) = (%v, %v), want (%v, %v)", tt.in, got, found, tt.want, tt.found)
		}
	}
}

func TestDeliveryTag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Produit EN STOCK, livraison 48h", "READY_TO_SHIP"},
		{"Disponible immédiatement", "READY_TO_SHIP"},
		{"currently in stock", "READY_TO_SHIP"},
		{"Sur commande uniquement", "ON_ORDER"},
		{"", "ON_ORDER"},
	}
	for _, tt := range tests {
		if got := DeliveryTag(tt.in); got != tt.want {
			t.Errorf("DeliveryTag(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCategories(t *testing.T) {
	text := "Chaise en bois\nMobilier\nSalon\n129,90 €\nEn stock\nCuisine\nDécoration\nUne très longue ligne de description qui dépasse largement la limite fixée"
	got := Categories(text, "Chaise en bois")

	// Product name, price and availability lines are skipped; the cap keeps
	// the first three survivors.
	want := []string{"Mobilier", "Salon", "Cuisine"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Categories = %v, want %v", got, want)
	}
}

func TestCategoriesDedup(t *testing.T) {
	text := "Salon\nSALON\nsalon!"
	got := Categories(text, "Table")
	if len(got) != 1 || got[0] != "Salon" {
		t.Fatalf("Categories = %v, want [Salon]", got)
	}
}

func TestTextFromHTML(t *testing.T) {
	in := `<div><h1>Titre</h1><script>var x = 1;</script><p>Premier <b>paragraphe</b>.</p><style>.a{}</style><p>Second.</p></div>`
	got := TextFromHTML(in)
	want := "Titre\nPremier paragraphe.\nSecond."
	if got != want {
		t.Errorf("TextFromHTML = %q, want %q", got, want)
	}
}

func TestTextFromHTMLPlainText(t *testing.T) {
	if got := TextFromHTML("juste du texte"); got != "juste du texte" {
		t.Errorf("TextFromHTML passthrough = %q", got)
	}
}
