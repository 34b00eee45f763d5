package seed

// Location is one row of a seed file
type Location struct {
	Title           string  `json:"title" parquet:"title"`
	Notes           string  `json:"notes" parquet:"notes"`
	Latitude        float64 `json:"latitude" parquet:"latitude"`
	Longitude       float64 `json:"longitude" parquet:"longitude"`
	HistoricalImage string  `json:"historical_image" parquet:"historical_image"`
}
