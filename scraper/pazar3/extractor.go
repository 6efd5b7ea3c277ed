package pazar3

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"car-scraper/models"
)

// Extract pulls every known field off a listing page. Absent fields stay nil;
// fields that are present but unreadable are reported as FieldErrors and also
// left nil. A page without a title is reported as missing it, since every ad
// has one. Extract never fails as a whole.
func Extract(doc *goquery.Document, url string) (*models.RawListing, []models.FieldError) {
	var errs []models.FieldError
	raw := &models.RawListing{
		URL:         url,
		Title:       textOf(doc, TitleSelector),
		Description: textOf(doc, DescriptionSelector),
		PriceText:   textOf(doc, PriceTextSelector),
		Address:     textOf(doc, AddressSelector),
		PublishDate: textOf(doc, PublishDateSelector),
		PublishTime: textOf(doc, PublishTimeSelector),
		Views:       textOf(doc, ViewsSelector),
		Phone:       textOf(doc, PhoneSelector),
	}
	if raw.Title == nil {
		errs = append(errs, models.FieldError{Field: "title", Reason: models.ReasonMissing})
	}

	doc.Find(ImageSelector).Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr(ImageAttr); ok && strings.TrimSpace(src) != "" {
			raw.Images = append(raw.Images, strings.TrimSpace(src))
		}
	})

	if coords, ok := doc.Find(MapLinkSelector).First().Attr(CoordinatesAttr); ok {
		c, err := models.ParseCoordinates(coords)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "coordinates", Reason: models.ReasonMalformed, Err: err})
		} else {
			raw.Coordinates = c
		}
	}

	raw.HasMessageButton = doc.Find(MessageButtonSelector).Length() > 0

	amount := doc.Find(PriceAmountSelector).First()
	if v, ok := amount.Attr("value"); ok {
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", "."), 64)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "price_value", Reason: models.ReasonMalformed, Err: err})
		} else {
			raw.PriceAmount = &f
			raw.PriceAmountText = nonEmpty(amount.Text())
			raw.PriceCurrency = textOf(doc, PriceCurrencySelector)
		}
	}

	doc.Find(TagItemSelector).Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(strings.ReplaceAll(s.Find(TagLabelSelector).First().Text(), ":", ""))
		value := collapse(s.Find(TagValueSelector).First().Text())
		if label == "" || value == "" {
			return
		}
		raw.Tags = append(raw.Tags, models.Tag{Label: label, Value: value})
	})

	return raw, errs
}

func textOf(doc *goquery.Document, selector string) *string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return nil
	}
	return nonEmpty(sel.Text())
}

func nonEmpty(s string) *string {
	s = collapse(s)
	if s == "" {
		return nil
	}
	return &s
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
