package testutil

import "encoding/base64"

// Base64 for two distinct 1x1 PNGs: one transparent, one red. Small enough
// to inline, real enough to exercise the data-URL decode path.
const (
	PNGBase64    = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg=="
	AltPNGBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mP8z8BQDwAEhQGAhKmMIQAAAABJRU5ErkJggg=="
)

// PNGData returns the raw bytes of the 1x1 transparent PNG fixture.
func PNGData() []byte {
	data, err := base64.StdEncoding.DecodeString(PNGBase64)
	if err != nil {
		panic(err)
	}
	return data
}

// PNGDataURL returns the fixture as a data URL, the form browser captures
// arrive in.
func PNGDataURL() string {
	return "data:image/png;base64," + PNGBase64
}

// AltPNGDataURL returns a second, byte-distinct PNG fixture as a data URL.
func AltPNGDataURL() string {
	return "data:image/png;base64," + AltPNGBase64
}
