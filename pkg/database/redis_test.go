package database

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/bigode/bigode-booking/pkg/config"
)

func TestConnect_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := Connect(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer rdb.Close()

	if err := rdb.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("expected v, got %q", got)
	}
}

func TestConnect_BadURL(t *testing.T) {
	if _, err := Connect(context.Background(), config.RedisConfig{URL: "::not a url"}); err == nil {
		t.Fatal("expected parse error")
	}
}
