package omdb

// response is the subset of the OMDb title lookup payload we map. Optional
// fields are pointers so an absent field can be told apart from an empty one.
type response struct {
	Response   string  `json:"Response"`
	Error      string  `json:"Error"`
	Title      *string `json:"Title"`
	Director   *string `json:"Director"`
	Runtime    *string `json:"Runtime"`
	Genre      *string `json:"Genre"`
	Year       *string `json:"Year"`
	Plot       *string `json:"Plot"`
	ImdbRating *string `json:"imdbRating"`
}

func (r response) found() bool {
	return r.Response == "True"
}
