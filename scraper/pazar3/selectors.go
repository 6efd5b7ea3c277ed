package pazar3

// CSS selectors for a pazar3.mk listing page.
const (
	TitleSelector         = "h1.ci-text-base"
	DescriptionSelector   = "div.description-area"
	PriceTextSelector     = "span.actual-price"
	PriceAmountSelector   = "span.format-money-int[value]"
	PriceCurrencySelector = "bdi.new-price > span:not([class])"
	ImageSelector         = "img.lazyload"
	ImageAttr             = "data-src"
	AddressSelector       = ".display-ad-address"
	MapLinkSelector       = `a.map[data-target="location"]`
	CoordinatesAttr       = "data-coords"
	PublishDateSelector   = ".published-date"
	PublishTimeSelector   = ".published-time"
	ViewsSelector         = ".views-number span"
	PhoneSelector         = `a[href^="tel:"]`
	MessageButtonSelector = `[data-target="#contactModal"]`
	TagItemSelector       = "div.tags-area a.tag-item"
	TagLabelSelector      = "span"
	TagValueSelector      = "bdi"
)
