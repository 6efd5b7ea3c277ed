package services

import (
	"math"
	"sort"
	"strconv"

	"car-scraper/models"
	"car-scraper/storage"
	"car-scraper/utils"
)

type imputePolicy int

const (
	imputeMedian imputePolicy = iota
	imputeMode
	imputeSentinel
)

type imputeRule struct {
	column   string
	policy   imputePolicy
	sentinel string
}

// imputeRules fill absent values column by column, in this order.
var imputeRules = []imputeRule{
	{column: "price_value", policy: imputeMedian},
	{column: "mileage_start", policy: imputeMedian},
	{column: "mileage_end", policy: imputeMedian},
	{column: "year", policy: imputeMedian},
	{column: "fuel_type", policy: imputeMode},
	{column: "transmission", policy: imputeMode},
	{column: "seller_type", policy: imputeMode},
	{column: "description", policy: imputeSentinel, sentinel: "No description"},
	{column: "color", policy: imputeSentinel, sentinel: "Unknown"},
}

// impute applies imputeRules and returns how many values each column got.
// A column with no known values at all is left untouched.
func impute(listings []*models.CleanListing, logger *utils.Logger) map[string]int {
	filled := make(map[string]int)
	for _, rule := range imputeRules {
		col, ok := storage.LookupColumn(rule.column)
		if !ok {
			continue
		}

		var missing []*models.CleanListing
		var known []any
		for _, l := range listings {
			if v := col.Value(l); v != nil {
				known = append(known, v)
			} else {
				missing = append(missing, l)
			}
		}
		if len(missing) == 0 {
			continue
		}

		fill, ok := fillValue(rule, col.Kind, known)
		if !ok {
			logger.Warn("[cleaner] No values to impute %s from; %d rows left empty", rule.column, len(missing))
			continue
		}
		for _, l := range missing {
			if err := col.Parse(l, fill); err != nil {
				logger.Warn("[cleaner] Impute %s: %v", rule.column, err)
				continue
			}
			filled[rule.column]++
		}
		logger.Debug("[cleaner] Imputed %d %s values with %q", filled[rule.column], rule.column, fill)
	}
	return filled
}

func fillValue(rule imputeRule, kind storage.Kind, known []any) (string, bool) {
	switch rule.policy {
	case imputeSentinel:
		return rule.sentinel, true
	case imputeMode:
		values := make([]string, 0, len(known))
		for _, v := range known {
			if s, ok := v.(string); ok {
				values = append(values, s)
			}
		}
		return mode(values)
	default:
		values := make([]float64, 0, len(known))
		for _, v := range known {
			switch n := v.(type) {
			case int:
				values = append(values, float64(n))
			case float64:
				values = append(values, n)
			}
		}
		m, ok := median(values)
		if !ok {
			return "", false
		}
		if kind == storage.KindInt {
			return strconv.Itoa(int(math.Round(m))), true
		}
		return strconv.FormatFloat(m, 'f', -1, 64), true
	}
}

func median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid], true
	}
	return (sorted[mid-1] + sorted[mid]) / 2, true
}

// mode returns the most frequent value; ties go to the lexicographically
// smallest.
func mode(values []string) (string, bool) {
	if len(values) == 0 {
		return "", false
	}
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, true
}
