package guard

import (
	"context"
	"testing"
)

func TestAcquireIsExclusivePerKey(t *testing.T) {
	g := NewMemory()
	ctx := context.Background()

	release, ok, err := g.Acquire(ctx, "post:0")
	if err != nil || !ok {
		t.Fatalf("ожидали захват ключа, ok=%v err=%v", ok, err)
	}
	if _, ok, _ := g.Acquire(ctx, "post:0"); ok {
		t.Fatalf("повторный захват занятого ключа должен быть отклонён")
	}
	if _, ok, _ := g.Acquire(ctx, "post:1"); !ok {
		t.Fatalf("другой ключ должен быть свободен")
	}
	release()
	release()
	if _, ok, _ := g.Acquire(ctx, "post:0"); !ok {
		t.Fatalf("после release ключ должен освободиться")
	}
}
