package screenshot

import (
	"encoding/base64"
	"testing"
)

func TestGenerateFileID(t *testing.T) {
	data := []byte("screenshot bytes")

	id := GenerateFileID(data)
	if len(id) != 16 {
		t.Errorf("GenerateFileID() length = %d, want 16", len(id))
	}

	t.Run("stable for identical content", func(t *testing.T) {
		if again := GenerateFileID([]byte("screenshot bytes")); again != id {
			t.Errorf("GenerateFileID() = %q, want %q", again, id)
		}
	})

	t.Run("differs for different content", func(t *testing.T) {
		if other := GenerateFileID([]byte("other bytes")); other == id {
			t.Error("GenerateFileID() returned same id for different content")
		}
	})
}

func TestDecodeImageData(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47}
	encoded := base64.StdEncoding.EncodeToString(payload)

	t.Run("plain base64", func(t *testing.T) {
		got, err := DecodeImageData(encoded)
		if err != nil {
			t.Fatalf("DecodeImageData() error = %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("DecodeImageData() = %v, want %v", got, payload)
		}
	})

	t.Run("data url prefix stripped", func(t *testing.T) {
		got, err := DecodeImageData("data:image/png;base64," + encoded)
		if err != nil {
			t.Fatalf("DecodeImageData() error = %v", err)
		}
		if string(got) != string(payload) {
			t.Errorf("DecodeImageData() = %v, want %v", got, payload)
		}
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		if _, err := DecodeImageData("not base64!!!"); err == nil {
			t.Error("DecodeImageData() expected error for invalid base64")
		}
	})

	t.Run("rejects empty payload", func(t *testing.T) {
		if _, err := DecodeImageData(""); err == nil {
			t.Error("DecodeImageData() expected error for empty payload")
		}
	})

	t.Run("rejects data url without comma", func(t *testing.T) {
		if _, err := DecodeImageData("data:image/png;base64"); err == nil {
			t.Error("DecodeImageData() expected error for malformed data url")
		}
	})
}
