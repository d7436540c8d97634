package entities

import (
	"fmt"
	"sort"
	"strings"
)

// Doctor is the canonical doctor profile
type Doctor struct {
	ID            string  `json:"id"`
	FullName      string  `json:"fullName"`
	Specialty     string  `json:"specialty"`
	Bio           string  `json:"bio"`
	City          string  `json:"city"`
	PriceMinCents int64   `json:"priceMinCents"`
	PriceMaxCents int64   `json:"priceMaxCents"`
	Verified      bool    `json:"verified"`
	RatingAvg     float64 `json:"ratingAvg"`
	RatingCount   int     `json:"ratingCount"`
}

// DoctorSort selects the ordering of a filtered doctor list
type DoctorSort string

const (
	// DoctorSortRelevance keeps the server order
	DoctorSortRelevance DoctorSort = "relevance"
	DoctorSortRating    DoctorSort = "rating"
	DoctorSortPriceAsc  DoctorSort = "priceAsc"
	DoctorSortPriceDesc DoctorSort = "priceDesc"
)

// ParseDoctorSort validates a sort key. Empty means relevance.
func ParseDoctorSort(raw string) (DoctorSort, error) {
	switch s := DoctorSort(strings.TrimSpace(raw)); s {
	case "":
		return DoctorSortRelevance, nil
	case DoctorSortRelevance, DoctorSortRating, DoctorSortPriceAsc, DoctorSortPriceDesc:
		return s, nil
	}
	return "", fmt.Errorf("unknown sort %q (want relevance, rating, priceAsc or priceDesc)", raw)
}

// DoctorFilter narrows the directory. Prices are whole currency units and
// are compared against the cent-valued price range of each doctor.
type DoctorFilter struct {
	Specialty    string
	City         string
	MinPrice     *int64
	MaxPrice     *int64
	VerifiedOnly bool
	Sort         DoctorSort
}

// Matches reports whether d passes every set criterion.
func (f DoctorFilter) Matches(d Doctor) bool {
	if f.Specialty != "" && !containsFold(d.Specialty, f.Specialty) {
		return false
	}
	if f.City != "" && !containsFold(d.City, f.City) {
		return false
	}
	if f.MinPrice != nil && d.PriceMinCents < *f.MinPrice*100 {
		return false
	}
	if f.MaxPrice != nil && d.PriceMaxCents > *f.MaxPrice*100 {
		return false
	}
	if f.VerifiedOnly && !d.Verified {
		return false
	}
	return true
}

// Apply filters doctors and orders the result. The input is not modified.
func (f DoctorFilter) Apply(doctors []Doctor) []Doctor {
	out := make([]Doctor, 0, len(doctors))
	for _, d := range doctors {
		if f.Matches(d) {
			out = append(out, d)
		}
	}

	switch f.Sort {
	case DoctorSortRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].RatingAvg > out[j].RatingAvg })
	case DoctorSortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceMinCents < out[j].PriceMinCents })
	case DoctorSortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceMinCents > out[j].PriceMinCents })
	}
	return out
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(sub)))
}
