package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bigode/bigode-booking/internal/domain"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestQueueJoinLeaveAndServe(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewQueueRepository(rdb)
	ctx := context.Background()

	for i, session := range []string{"a", "b", "c"} {
		pos, length, err := repo.Join(ctx, "barber-1", session)
		if err != nil {
			t.Fatalf("Join(%s): %v", session, err)
		}
		if pos != i+1 || length != i+1 {
			t.Fatalf("Join(%s): expected position %d, got %d/%d", session, i+1, pos, length)
		}
	}

	pos, length, err := repo.Join(ctx, "barber-1", "b")
	if err != nil || pos != 2 || length != 3 {
		t.Fatalf("rejoin should keep position, got %d/%d %v", pos, length, err)
	}

	head, err := repo.PopHead(ctx, "barber-1", time.Minute)
	if err != nil || head != "a" {
		t.Fatalf("PopHead: %q %v", head, err)
	}
	pos, _, err = repo.Position(ctx, "barber-1", "a")
	if err != nil || pos != 0 {
		t.Fatalf("expected served position 0, got %d %v", pos, err)
	}
	pos, length, err = repo.Position(ctx, "barber-1", "c")
	if err != nil || pos != 2 || length != 2 {
		t.Fatalf("expected c second of 2, got %d/%d %v", pos, length, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, _, err := repo.Position(ctx, "barber-1", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected served marker to expire, got %v", err)
	}

	left, err := repo.Leave(ctx, "barber-1", "b")
	if err != nil || !left {
		t.Fatalf("Leave: %v %v", left, err)
	}
	if left, _ := repo.Leave(ctx, "barber-1", "b"); left {
		t.Fatal("second leave should report nothing removed")
	}

	barbers, err := repo.Barbers(ctx)
	if err != nil || len(barbers) != 1 {
		t.Fatalf("Barbers: %v %v", barbers, err)
	}
}

func TestQueueConcurrentJoins(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewQueueRepository(rdb)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := repo.Join(ctx, "barber-1", "same"); err != nil {
				t.Errorf("Join: %v", err)
			}
		}()
	}
	wg.Wait()
	if n, _ := repo.Length(ctx, "barber-1"); n != 1 {
		t.Fatalf("expected one entry for a repeated session, got %d", n)
	}

	positions := make(chan int, 10)
	for _, session := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			pos, _, err := repo.Join(ctx, "barber-1", session)
			if err != nil {
				t.Errorf("Join(%s): %v", session, err)
				return
			}
			positions <- pos
		}(session)
	}
	wg.Wait()
	close(positions)
	seen := map[int]bool{}
	for pos := range positions {
		if pos < 2 || pos > 11 || seen[pos] {
			t.Fatalf("unexpected or duplicate position %d", pos)
		}
		seen[pos] = true
	}
	if n, _ := repo.Length(ctx, "barber-1"); n != 11 {
		t.Fatalf("expected 11 queued, got %d", n)
	}
}

func TestQueueLeaveClearsServedMarker(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewQueueRepository(rdb)
	ctx := context.Background()

	if _, _, err := repo.Join(ctx, "barber-1", "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.PopHead(ctx, "barber-1", time.Minute); err != nil {
		t.Fatal(err)
	}
	left, err := repo.Leave(ctx, "barber-1", "a")
	if err != nil || left {
		t.Fatalf("Leave of a served session: %v %v", left, err)
	}
	if _, _, err := repo.Position(ctx, "barber-1", "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected served marker cleared, got %v", err)
	}
}

func TestQueuePopEmpty(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewQueueRepository(rdb)
	if _, err := repo.PopHead(context.Background(), "barber-1", time.Minute); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestQueueOpenFlag(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewQueueRepository(rdb)
	ctx := context.Background()

	if open, _ := repo.IsOpen(ctx, "barber-1"); !open {
		t.Fatal("queues start open")
	}
	if err := repo.SetOpen(ctx, "barber-1", false); err != nil {
		t.Fatal(err)
	}
	if open, _ := repo.IsOpen(ctx, "barber-1"); open {
		t.Fatal("expected closed")
	}
	_ = repo.SetOpen(ctx, "barber-1", true)
	if open, _ := repo.IsOpen(ctx, "barber-1"); !open {
		t.Fatal("expected reopened")
	}
}

func TestTokenRepositoryTTL(t *testing.T) {
	mr, rdb := newTestRedis(t)
	repo := NewTokenRepository(rdb)
	ctx := context.Background()
	barber := "b1"

	if err := repo.Save(ctx, "tok", domain.TokenInfo{BarbershopID: "shop", BarberID: &barber}, time.Minute); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := repo.Get(ctx, "tok")
	if err != nil || info.BarberID == nil || *info.BarberID != "b1" {
		t.Fatalf("Get: %+v %v", info, err)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := repo.Get(ctx, "tok"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expired token, got %v", err)
	}
}

func TestOTPRepository(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewOTPRepository(rdb)
	ctx := context.Background()

	if _, err := repo.Get(ctx, "+5511999990001"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, "+5511999990001", "hash", time.Minute); err != nil {
		t.Fatal(err)
	}
	if got, _ := repo.Get(ctx, "+5511999990001"); got != "hash" {
		t.Fatalf("unexpected hash %q", got)
	}
	_ = repo.Delete(ctx, "+5511999990001")
	if _, err := repo.Get(ctx, "+5511999990001"); !errors.Is(err, ErrNotFound) {
		t.Fatal("expected code deleted")
	}
}

func TestIdempotencyRepository(t *testing.T) {
	_, rdb := newTestRedis(t)
	repo := NewIdempotencyRepository(rdb)
	ctx := context.Background()

	if v, err := repo.Get(ctx, "k"); err != nil || v != "" {
		t.Fatalf("expected empty miss, got %q %v", v, err)
	}
	if err := repo.Set(ctx, "k", `{"id":"1"}`, time.Hour); err != nil {
		t.Fatal(err)
	}
	if v, _ := repo.Get(ctx, "k"); v != `{"id":"1"}` {
		t.Fatalf("unexpected value %q", v)
	}
}

func TestAppointmentRepositoryWindow(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if err := SeedAgenda(ctx, repo, day, time.UTC); err != nil {
		t.Fatal(err)
	}

	all, _ := repo.ListByBarbershop(ctx, DemoBarbershopID, day, day.AddDate(0, 0, 1))
	if len(all) != 5 {
		t.Fatalf("expected 5 seeded appointments, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].StartTime.Before(all[i-1].StartTime) {
			t.Fatal("expected appointments sorted by start")
		}
	}
	carlos, _ := repo.ListByBarber(ctx, BarberCarlosID, day, day.AddDate(0, 0, 1))
	if len(carlos) != 2 {
		t.Fatalf("expected 2 for Carlos, got %d", len(carlos))
	}
	none, _ := repo.ListByBarber(ctx, BarberCarlosID, day.AddDate(0, 0, 1), day.AddDate(0, 0, 2))
	if len(none) != 0 {
		t.Fatal("expected nothing the next day")
	}
}

func TestAppointmentCreateIfFree(t *testing.T) {
	repo := NewAppointmentRepository()
	ctx := context.Background()
	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	if err := SeedAgenda(ctx, repo, day, time.UTC); err != nil {
		t.Fatal(err)
	}
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }
	rec := func(barberID string, h, m int) AppointmentRecord {
		return AppointmentRecord{Appointment: domain.Appointment{
			BarberID:  barberID,
			StartTime: at(h, m),
			EndTime:   at(h, m).Add(30 * time.Minute),
			Status:    domain.AppointmentScheduled,
		}}
	}

	// seed-1 holds Carlos 09:00-09:30
	if err := repo.CreateIfFree(ctx, rec(BarberCarlosID, 9, 15)); !errors.Is(err, ErrSlotTaken) {
		t.Fatalf("expected ErrSlotTaken, got %v", err)
	}
	if err := repo.CreateIfFree(ctx, rec(BarberCarlosID, 9, 30)); err != nil {
		t.Fatalf("adjacent slot refused: %v", err)
	}
	if err := repo.CreateIfFree(ctx, rec(BarberFernandoID, 9, 0)); err != nil {
		t.Fatalf("other barber refused: %v", err)
	}
	// seed-5 is canceled
	if err := repo.CreateIfFree(ctx, rec(BarberRafaelID, 15, 30)); err != nil {
		t.Fatalf("canceled slot refused: %v", err)
	}

	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		won int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if repo.CreateIfFree(ctx, rec(BarberCarlosID, 16, 0)) == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if won != 1 {
		t.Fatalf("expected one concurrent insert to win, got %d", won)
	}
}

func TestFixtureCatalog(t *testing.T) {
	c := NewFixtureCatalog()
	ctx := context.Background()

	if len(c.Barbers(ctx, DemoBarbershopID)) != 3 || len(c.Services(ctx, DemoBarbershopID)) != 5 {
		t.Fatal("unexpected fixture sizes")
	}
	b, shopID, ok := c.Barber(ctx, BarberFernandoID)
	if !ok || shopID != DemoBarbershopID || b.WorksOn(time.Monday) {
		t.Fatalf("unexpected Fernando fixture %+v", b)
	}
	if _, ok := c.AdminByPhone(ctx, "+5511999990001"); !ok {
		t.Fatal("expected the owner fixture")
	}
	if _, ok := c.Service(ctx, "nope"); ok {
		t.Fatal("unexpected service")
	}
}
