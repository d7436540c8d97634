package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleDoctors() []Doctor {
	return []Doctor{
		{ID: "d1", FullName: "Ana Pop", Specialty: "Cardiology", City: "Bucharest", PriceMinCents: 20000, PriceMaxCents: 40000, Verified: true, RatingAvg: 4.2},
		{ID: "d2", FullName: "Ion Ionescu", Specialty: "Dermatology", City: "Cluj-Napoca", PriceMinCents: 10000, PriceMaxCents: 15000, Verified: false, RatingAvg: 4.9},
		{ID: "d3", FullName: "Maria Rus", Specialty: "Pediatric Cardiology", City: "bucharest", PriceMinCents: 15000, PriceMaxCents: 30000, Verified: true, RatingAvg: 3.8},
	}
}

func ids(doctors []Doctor) []string {
	out := make([]string, len(doctors))
	for i, d := range doctors {
		out[i] = d.ID
	}
	return out
}

func TestDoctorFilter_SubstringCaseInsensitive(t *testing.T) {
	got := DoctorFilter{Specialty: "cardio", City: "BUCH"}.Apply(sampleDoctors())
	assert.Equal(t, []string{"d1", "d3"}, ids(got))
}

func TestDoctorFilter_PriceInWholeUnits(t *testing.T) {
	minPrice, maxPrice := int64(150), int64(300)
	got := DoctorFilter{MinPrice: &minPrice, MaxPrice: &maxPrice}.Apply(sampleDoctors())
	assert.Equal(t, []string{"d3"}, ids(got))
}

func TestDoctorFilter_VerifiedOnly(t *testing.T) {
	got := DoctorFilter{VerifiedOnly: true}.Apply(sampleDoctors())
	assert.Equal(t, []string{"d1", "d3"}, ids(got))
}

func TestDoctorFilter_Sorts(t *testing.T) {
	all := sampleDoctors()

	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(DoctorFilter{Sort: DoctorSortRelevance}.Apply(all)))
	assert.Equal(t, []string{"d2", "d1", "d3"}, ids(DoctorFilter{Sort: DoctorSortRating}.Apply(all)))
	assert.Equal(t, []string{"d2", "d3", "d1"}, ids(DoctorFilter{Sort: DoctorSortPriceAsc}.Apply(all)))
	assert.Equal(t, []string{"d1", "d3", "d2"}, ids(DoctorFilter{Sort: DoctorSortPriceDesc}.Apply(all)))

	// input order untouched
	assert.Equal(t, []string{"d1", "d2", "d3"}, ids(all))
}

func TestParseDoctorSort(t *testing.T) {
	s, err := ParseDoctorSort("")
	assert.NoError(t, err)
	assert.Equal(t, DoctorSortRelevance, s)

	_, err = ParseDoctorSort("cheapest")
	assert.Error(t, err)
}
