package pazar3

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"car-scraper/models"
)

const listingPage = `<!DOCTYPE html>
<html><body>
<h1 class="ci-text-base">  Volkswagen Golf 7
  1.6 TDI </h1>
<div class="description-area">Одржуван, сервисна книга.</div>
<span class="actual-price">Цена: 5,500 €</span>
<bdi class="new-price"><span class="format-money-int" value="5500">5.500</span> <span>EUR</span></bdi>
<img class="lazyload" data-src="https://media.pazar3.mk/1.jpg">
<img class="lazyload" data-src="https://media.pazar3.mk/2.jpg">
<img class="lazyload" src="placeholder.gif">
<div class="display-ad-address">Скопје, Аеродром</div>
<a class="map" data-target="location" data-coords="41.9981,21.4254">map</a>
<span class="published-date">12.03.2025</span>
<span class="published-time">14:05</span>
<div class="views-number"><span>1.234</span></div>
<a href="tel:+38970123456">070 123 456</a>
<button data-target="#contactModal">Прати порака</button>
<div class="tags-area">
  <a class="tag-item"><span>Производител:</span><bdi>Volkswagen</bdi></a>
  <a class="tag-item"><span>Модел:</span><bdi>Golf</bdi></a>
  <a class="tag-item"><span>Година:</span><bdi>2015</bdi></a>
  <a class="tag-item"><span>Километража:</span><bdi>150000 - 175000</bdi></a>
  <a class="tag-item"><span>Врати:</span><bdi>5</bdi></a>
  <a class="tag-item"><span>Празно:</span><bdi> </bdi></a>
</div>
</body></html>`

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractFullPage(t *testing.T) {
	raw, errs := Extract(mustDoc(t, listingPage), "https://www.pazar3.mk/ad/1")
	if len(errs) != 0 {
		t.Fatalf("unexpected field errors: %v", errs)
	}

	if raw.Title == nil || *raw.Title != "Volkswagen Golf 7 1.6 TDI" {
		t.Errorf("Title = %v", raw.Title)
	}
	if raw.PriceText == nil || *raw.PriceText != "Цена: 5,500 €" {
		t.Errorf("PriceText = %v", raw.PriceText)
	}
	if raw.PriceAmount == nil || *raw.PriceAmount != 5500 {
		t.Errorf("PriceAmount = %v, want 5500", raw.PriceAmount)
	}
	if raw.PriceCurrency == nil || *raw.PriceCurrency != "EUR" {
		t.Errorf("PriceCurrency = %v, want EUR", raw.PriceCurrency)
	}
	if raw.Coordinates == nil || raw.Coordinates.String() != "41.9981,21.4254" {
		t.Errorf("Coordinates = %v", raw.Coordinates)
	}
	if raw.Views == nil || *raw.Views != "1.234" {
		t.Errorf("Views = %v", raw.Views)
	}
	if raw.Phone == nil || *raw.Phone != "070 123 456" {
		t.Errorf("Phone = %v", raw.Phone)
	}
	if !raw.HasMessageButton {
		t.Error("HasMessageButton = false, want true")
	}

	wantImages := []string{"https://media.pazar3.mk/1.jpg", "https://media.pazar3.mk/2.jpg"}
	if diff := cmp.Diff(wantImages, raw.Images); diff != "" {
		t.Errorf("Images mismatch (-want +got):\n%s", diff)
	}

	wantTags := []models.Tag{
		{Label: "Производител", Value: "Volkswagen"},
		{Label: "Модел", Value: "Golf"},
		{Label: "Година", Value: "2015"},
		{Label: "Километража", Value: "150000 - 175000"},
		{Label: "Врати", Value: "5"},
	}
	if diff := cmp.Diff(wantTags, raw.Tags); diff != "" {
		t.Errorf("Tags mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractEmptyPage(t *testing.T) {
	raw, errs := Extract(mustDoc(t, "<html><body><p>gone</p></body></html>"), "https://www.pazar3.mk/ad/2")
	want := []models.FieldError{{Field: "title", Reason: models.ReasonMissing}}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("only the title should be reported missing (-want +got):\n%s", diff)
	}
	if raw.URL != "https://www.pazar3.mk/ad/2" {
		t.Errorf("URL = %q", raw.URL)
	}
	if raw.Title != nil || raw.PriceText != nil || raw.Coordinates != nil || raw.PriceAmount != nil {
		t.Errorf("expected nil fields, got %+v", raw)
	}
	if raw.HasMessageButton {
		t.Error("HasMessageButton = true on an empty page")
	}
	if len(raw.Images) != 0 || len(raw.Tags) != 0 {
		t.Errorf("expected no images or tags, got %v %v", raw.Images, raw.Tags)
	}
}

func TestExtractMalformedAttributes(t *testing.T) {
	html := `<html><body>
<h1 class="ci-text-base">Opel Astra</h1>
<a class="map" data-target="location" data-coords="nowhere">map</a>
<span class="format-money-int" value="по договор">по договор</span>
</body></html>`

	raw, errs := Extract(mustDoc(t, html), "u")
	if raw.Title == nil || *raw.Title != "Opel Astra" {
		t.Errorf("good fields should survive, Title = %v", raw.Title)
	}
	if raw.Coordinates != nil || raw.PriceAmount != nil {
		t.Error("malformed fields should stay nil")
	}

	got := map[string]models.Reason{}
	for _, e := range errs {
		got[e.Field] = e.Reason
	}
	want := map[string]models.Reason{
		"coordinates": models.ReasonMalformed,
		"price_value": models.ReasonMalformed,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("field errors mismatch (-want +got):\n%s", diff)
	}
}
