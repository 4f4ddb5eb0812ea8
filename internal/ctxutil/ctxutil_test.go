package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestWithAPITimeoutRespectsParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	ctx, cancel2 := WithAPITimeout(parent)
	defer cancel2()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("дедлайн должен быть установлен")
	}
	if time.Until(dl) > time.Second {
		t.Fatal("дочерний дедлайн не может быть позже родительского")
	}
}

func TestWithDBTimeoutSetsBudget(t *testing.T) {
	ctx, cancel := WithDBTimeout(context.Background())
	defer cancel()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("дедлайн должен быть установлен")
	}
	if remain := time.Until(dl); remain > DefaultDBTimeout {
		t.Fatalf("бюджет %v больше стандартного %v", remain, DefaultDBTimeout)
	}
}
