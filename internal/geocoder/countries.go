package geocoder

// countryRect is one rectangle in the coordinate→country table. Rectangles
// are checked in order; the first match wins, so more specific/smaller
// rectangles should precede broader ones when they overlap. This table is
// mirrored exactly (same rectangles, same order) in
// internal/store/migrations/0001_init.sql's validation trigger, so the Go
// and SQL paths agree per spec.md §4.4.
type countryRect struct {
	Code                     string
	MinLat, MaxLat           float64
	MinLon, MaxLon           float64
}

var countryTable = []countryRect{
	{"DK", 54.5, 57.8, 8.0, 15.2},
	{"NO", 57.9, 71.2, 4.0, 31.1},
	{"SE", 55.3, 69.1, 10.9, 24.2},
	{"DE", 47.2, 55.1, 5.8, 15.1},
	{"NL", 50.7, 53.6, 3.3, 7.3},
	{"BE", 49.4, 51.6, 2.5, 6.4},
	{"PL", 49.0, 54.9, 14.1, 24.2},
	{"FR", 41.3, 51.2, -5.2, 9.6},
	{"GB", 49.8, 60.9, -8.2, 1.8},
	{"IE", 51.3, 55.4, -10.5, -5.9},
	{"FI", 59.7, 70.1, 20.5, 31.6},
	{"IT", 35.4, 47.1, 6.6, 18.6},
	{"ES", 35.9, 43.9, -9.4, 4.4},
	{"PT", 36.9, 42.2, -9.6, -6.1},
	{"AT", 46.3, 49.1, 9.5, 17.2},
	{"CH", 45.8, 47.9, 5.9, 10.6},
}

// CountryForCoordinate returns the ISO-3166-1 alpha-2 code for the first
// matching rectangle, or "XX" if none match (spec.md §4.4).
func CountryForCoordinate(lon, lat float64) string {
	for _, r := range countryTable {
		if lat >= r.MinLat && lat <= r.MaxLat && lon >= r.MinLon && lon <= r.MaxLon {
			return r.Code
		}
	}
	return "XX"
}
