package model

// FormatOCR tags day records derived from scanned OCR text
const FormatOCR = "OCR"

// DaySegment is the raw text of one sitting day, bounded by date headers
type DaySegment struct {
	Date      string
	URL       string
	Retrieved string
	Text      string

	// Dated is false for the text preceding the first date header of a volume
	Dated bool
	// ClosedByVolumeEnd is true when no later date header closed the segment
	ClosedByVolumeEnd bool
}

// DayRecord is the per-day language statistics row
type DayRecord struct {
	URL        string  `json:"url"`
	Volume     string  `json:"volume"`
	Date       string  `json:"date"`
	Target     int     `json:"reo"`
	Ambiguous  int     `json:"ambiguous"`
	Other      int     `json:"other"`
	Percent    float64 `json:"percent"`
	Retrieved  string  `json:"retrieved"`
	Format     string  `json:"format"`
	Incomplete bool    `json:"incomplete"`
}

// UtteranceRecord is one accepted run of target-language sentences
type UtteranceRecord struct {
	URL       string  `json:"url"`
	Volume    string  `json:"volume"`
	Date      string  `json:"date"`
	Sequence  int     `json:"utterance"`
	Speaker   string  `json:"speaker"`
	Target    int     `json:"reo"`
	Ambiguous int     `json:"ambiguous"`
	Other     int     `json:"other"`
	Percent   float64 `json:"percent"`
	Text      string  `json:"text"`
}

// DayIndexFields is the column order of the day index output
var DayIndexFields = []string{"url", "volume", "date", "reo", "ambiguous", "other",
	"percent", "retrieved", "format", "incomplete"}

// UtteranceFields is the column order of the utterance output
var UtteranceFields = []string{"url", "volume", "date", "utterance", "speaker", "reo",
	"ambiguous", "other", "percent", "text"}

// VolumeIndexFields is the column order of the volume index
var VolumeIndexFields = []string{"retrieved", "url", "name", "period", "session",
	"downloaded", "processed"}
