package services

import "car-scraper/models"

// PriceCategory buckets a price. Bounds are lower-inclusive, so 5000 is
// Mid-range. Zero or negative prices are unknown and get no category.
func PriceCategory(price float64) string {
	switch {
	case price <= 0:
		return ""
	case price < 5000:
		return models.CategoryBudget
	case price < 10000:
		return models.CategoryMidRange
	case price < 20000:
		return models.CategoryPremium
	default:
		return models.CategoryLuxury
	}
}

// derive fills the computed columns. When the car is from this year (or the
// year is in the future) the per-year rates divide by one.
func derive(l *models.CleanListing, currentYear int) {
	l.CarAge, l.PricePerYear, l.MileagePerYear = nil, nil, nil
	l.PriceCategory = ""

	if l.PriceValue != nil {
		l.PriceCategory = PriceCategory(*l.PriceValue)
	}
	if l.Year == nil {
		return
	}

	age := currentYear - *l.Year
	l.CarAge = &age
	denom := float64(age)
	if age <= 0 {
		denom = 1
	}
	if l.PriceValue != nil {
		v := round2(*l.PriceValue / denom)
		l.PricePerYear = &v
	}
	if l.MileageStart != nil {
		v := round2(float64(*l.MileageStart) / denom)
		l.MileagePerYear = &v
	}
}
