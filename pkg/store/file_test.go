package store

import (
	"context"
	"testing"

	"github.com/stormboard/stormboard/pkg/board"
	"github.com/stormboard/stormboard/pkg/errors"
)

func testBoard(name string) *board.Board {
	return &board.Board{
		InstanceName: name,
		Items: []board.Item{
			{ID: "item-1", Type: board.TypeContextBox, Name: "Ctx", Width: 260, Height: 180},
			{ID: "item-2", Type: board.TypeEvent, ParentID: "item-1", Name: "ThingDone", X: 50, Y: 50, Width: 200, Height: 100},
		},
		Connections: []board.Connection{},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.Put(ctx, testBoard("online-shop")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, err := s.Get(ctx, "online-shop")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.InstanceName != "online-shop" || len(got.Items) != 2 {
		t.Errorf("loaded board = %+v", got)
	}
}

func TestFileStorePutReplaces(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()
	ctx := context.Background()

	_ = s.Put(ctx, testBoard("shop"))

	b := testBoard("shop")
	b.Items[1].X = 999
	if err := s.Put(ctx, b); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	got, _ := s.Get(ctx, "shop")
	if got.Items[1].X != 999 {
		t.Errorf("Put should replace the snapshot, x = %v", got.Items[1].X)
	}
}

func TestFileStoreGetMissing(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, errors.ErrCodeBoardNotFound) {
		t.Errorf("error code = %s, want BOARD_NOT_FOUND", errors.GetCode(err))
	}
}

func TestFileStoreDelete(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()
	ctx := context.Background()

	_ = s.Put(ctx, testBoard("shop"))
	if err := s.Delete(ctx, "shop"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "shop"); !errors.Is(err, errors.ErrCodeBoardNotFound) {
		t.Error("deleted board should be gone")
	}
	if err := s.Delete(ctx, "shop"); !errors.Is(err, errors.ErrCodeBoardNotFound) {
		t.Errorf("deleting a missing board: code = %s, want BOARD_NOT_FOUND", errors.GetCode(err))
	}
}

func TestFileStoreList(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()
	ctx := context.Background()

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("empty store List = %v", names)
	}

	_ = s.Put(ctx, testBoard("zeta"))
	_ = s.Put(ctx, testBoard("alpha"))

	names, _ = s.List(ctx)
	if len(names) != 2 || names[0] != "alpha" || names[1] != "zeta" {
		t.Errorf("List = %v, want sorted [alpha zeta]", names)
	}
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()
	ctx := context.Background()

	for _, name := range []string{"", "../escape", "a/b"} {
		if _, err := s.Get(ctx, name); !errors.Is(err, errors.ErrCodeInvalidName) {
			t.Errorf("Get(%q) code = %s, want INVALID_NAME", name, errors.GetCode(err))
		}
	}

	b := testBoard("x")
	b.InstanceName = "../../etc/passwd"
	if err := s.Put(ctx, b); !errors.Is(err, errors.ErrCodeInvalidName) {
		t.Errorf("Put with traversal name: code = %s, want INVALID_NAME", errors.GetCode(err))
	}
}

func TestFileStoreRejectsInvalidBoard(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	defer s.Close()

	b := testBoard("shop")
	b.Items[1].ParentID = "missing-box"
	if err := s.Put(context.Background(), b); !errors.Is(err, errors.ErrCodeInvalidBoard) {
		t.Errorf("Put invalid board: code = %s, want INVALID_BOARD", errors.GetCode(err))
	}
}
