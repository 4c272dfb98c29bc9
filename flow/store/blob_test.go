package store

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestMemBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs := NewMemBlobStore()

	t.Run("put returns distinct refs", func(t *testing.T) {
		ref1, err := blobs.Put(ctx, "a.png", []byte{1, 2})
		if err != nil {
			t.Fatalf("put failed: %v", err)
		}
		ref2, err := blobs.Put(ctx, "a.png", []byte{3, 4})
		if err != nil {
			t.Fatalf("put failed: %v", err)
		}
		if ref1 == ref2 {
			t.Error("refs must be unique even for the same name hint")
		}
		if blobs.Len() != 2 {
			t.Errorf("expected 2 blobs, got %d", blobs.Len())
		}
	})

	t.Run("get round-trips and copies", func(t *testing.T) {
		data := []byte{9, 8, 7}
		ref, _ := blobs.Put(ctx, "b.mp3", data)

		data[0] = 0 // caller mutation must not reach the store
		got, err := blobs.Get(ctx, ref)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if !bytes.Equal(got, []byte{9, 8, 7}) {
			t.Errorf("blob mutated through caller slice: %v", got)
		}
	})

	t.Run("missing ref", func(t *testing.T) {
		if _, err := blobs.Get(ctx, "nope"); !errors.Is(err, ErrBlobNotFound) {
			t.Errorf("expected ErrBlobNotFound, got %v", err)
		}
	})
}

func TestDirBlobStore(t *testing.T) {
	ctx := context.Background()
	blobs, err := NewDirBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	ref, err := blobs.Put(ctx, "image.png", []byte("png bytes"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := blobs.Get(ctx, ref)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(got) != "png bytes" {
		t.Errorf("round-trip mismatch: %q", got)
	}

	if _, err := blobs.Get(ctx, ref+"-missing"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("expected ErrBlobNotFound, got %v", err)
	}
}
