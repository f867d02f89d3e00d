package database

import (
	"context"
	"testing"
)

func TestCursorRepository_GetBeforeAdvance(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewCursorRepository(db)

	position, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if position != 0 {
		t.Errorf("Expected zero cursor before first advance, got %d", position)
	}
}

func TestCursorRepository_AdvanceAndGet(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewCursorRepository(db)
	ctx := context.Background()

	if err := repo.Advance(ctx, 481234); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	position, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if position != 481234 {
		t.Errorf("Expected cursor 481234, got %d", position)
	}
}

func TestCursorRepository_NeverMovesBackward(t *testing.T) {
	db, _ := openTestDB(t)
	repo := NewCursorRepository(db)
	ctx := context.Background()

	if err := repo.Advance(ctx, 481234); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	// A cycle that observed an older feed window must not regress the cursor
	if err := repo.Advance(ctx, 481000); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	position, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if position != 481234 {
		t.Errorf("Expected cursor to stay at 481234, got %d", position)
	}

	if err := repo.Advance(ctx, 481300); err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	position, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if position != 481300 {
		t.Errorf("Expected cursor to move forward to 481300, got %d", position)
	}
}
