package model

// Image is an opaque reference to a photo, usually a URI served by the API.
type Image = string

// PhotoAttachment associates an item code with its photos, in the order they
// were taken. ItemCode is a soft reference: it may name an item that exists
// in no category.
type PhotoAttachment struct {
	ItemCode string  `json:"ART_CODE"`
	Images   []Image `json:"imagenes"`
}
