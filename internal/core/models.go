package core

// NotAvailable is the provider's placeholder for a missing value.
const NotAvailable = "N/A"

type MovieQuery struct {
	Title string `json:"title" validate:"required"`
}

// MovieRecord is the normalized result of a metadata lookup. Every field holds
// NotAvailable when the provider did not supply it.
type MovieRecord struct {
	Title       string `json:"title"`
	Director    string `json:"director"`
	RunningTime string `json:"runningTime"`
	Genre       string `json:"genre"`
	ReleaseYear string `json:"releaseYear"`
	Plot        string `json:"plot"`
	ImdbRating  string `json:"imdbRating"`
}

// OrNotAvailable returns *s, or NotAvailable when s is nil.
func OrNotAvailable(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return *s
}
