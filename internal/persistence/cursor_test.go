package persistence

import (
	"testing"
	"time"

	"github.com/landrzz/LOPEffortTracker/internal/domain"
)

func TestCursorRoundtrip(t *testing.T) {
	cursor := &domain.Cursor{
		Timestamp: time.Date(2026, time.August, 30, 18, 4, 5, 123456789, time.UTC),
		ID:        "9f2c7e9a-0000-4000-8000-000000000001",
	}

	token := EncodeCursor(cursor)
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	decoded, err := DecodeCursor(token)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !decoded.Timestamp.Equal(cursor.Timestamp) || decoded.ID != cursor.ID {
		t.Fatalf("roundtrip mismatch: got %+v", decoded)
	}
}

func TestEncodeNilCursor(t *testing.T) {
	if got := EncodeCursor(nil); got != "" {
		t.Fatalf("expected empty token, got %q", got)
	}
}

func TestDecodeEmptyToken(t *testing.T) {
	cursor, err := DecodeCursor("   ")
	if err != nil || cursor != nil {
		t.Fatalf("expected nil cursor, got %v (%v)", cursor, err)
	}
}

func TestDecodeInvalidToken(t *testing.T) {
	if _, err := DecodeCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if _, err := DecodeCursor("bm8gcGlwZSBoZXJl"); err == nil {
		t.Fatal("expected error for missing separator")
	}
}
