package models

// BackgroundImage is a slide background known to the export adapters
type BackgroundImage struct {
	Filename    string `json:"filename" db:"filename"`
	ContentType string `json:"contentType" db:"content_type"`
	Data        []byte `json:"-"`
}
