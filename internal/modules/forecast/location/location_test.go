package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nolangormley/chore-chart/internal/modules/forecast/types"
)

func ptr(f float64) *float64 { return &f }

func TestStatic(t *testing.T) {
	t.Run("denies without coordinate", func(t *testing.T) {
		_, err := NewStatic(nil).Locate(context.Background())
		if !errors.Is(err, types.ErrLocationDenied) {
			t.Fatalf("err = %v; want ErrLocationDenied", err)
		}
	})

	t.Run("returns configured coordinate", func(t *testing.T) {
		want := types.Coordinate{Lat: 44.98, Lon: -93.27}
		got, err := NewStatic(&want).Locate(context.Background())
		if err != nil {
			t.Fatalf("Locate: %v", err)
		}
		if got != want {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}

func TestLatest(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	t.Run("denies before any report", func(t *testing.T) {
		_, err := NewLatest(time.Hour).Locate(context.Background())
		if !errors.Is(err, types.ErrLocationDenied) {
			t.Fatalf("err = %v; want ErrLocationDenied", err)
		}
	})

	t.Run("keeps the newest report", func(t *testing.T) {
		l := NewLatest(time.Hour)
		l.now = func() time.Time { return now }

		if err := l.Update(types.LocationReport{DeviceID: "phone", Lat: ptr(40), Lon: ptr(-105), Timestamp: now.Add(-time.Minute)}); err != nil {
			t.Fatalf("Update: %v", err)
		}
		if err := l.Update(types.LocationReport{DeviceID: "tablet", Lat: ptr(41), Lon: ptr(-106), Timestamp: now.Add(-10 * time.Minute)}); err != nil {
			t.Fatalf("Update: %v", err)
		}

		got, err := l.Locate(context.Background())
		if err != nil {
			t.Fatalf("Locate: %v", err)
		}
		if got.Lat != 40 || got.Lon != -105 {
			t.Errorf("got %v; want 40,-105", got)
		}
	})

	t.Run("stale report is denied", func(t *testing.T) {
		l := NewLatest(time.Hour)
		l.now = func() time.Time { return now }
		_ = l.Update(types.LocationReport{DeviceID: "phone", Lat: ptr(40), Lon: ptr(-105), Timestamp: now.Add(-2 * time.Hour)})

		_, err := l.Locate(context.Background())
		if !errors.Is(err, types.ErrLocationDenied) {
			t.Fatalf("err = %v; want ErrLocationDenied", err)
		}
	})

	t.Run("rejects invalid reports", func(t *testing.T) {
		l := NewLatest(0)
		if err := l.Update(types.LocationReport{Lat: ptr(91), Lon: ptr(0), Timestamp: now}); err == nil {
			t.Error("Update with lat 91 = nil; want error")
		}
		if err := l.Update(types.LocationReport{Lat: ptr(10), Timestamp: now}); err == nil {
			t.Error("Update without lon = nil; want error")
		}
		if _, err := l.Locate(context.Background()); !errors.Is(err, types.ErrLocationDenied) {
			t.Errorf("err = %v; want ErrLocationDenied", err)
		}
	})
}

func TestChain(t *testing.T) {
	home := types.Coordinate{Lat: 35.2, Lon: -80.8}

	t.Run("first success wins", func(t *testing.T) {
		latest := NewLatest(0)
		_ = latest.Update(types.LocationReport{Lat: ptr(1), Lon: ptr(2), Timestamp: time.Now()})

		got, err := Chain{latest, NewStatic(&home)}.Locate(context.Background())
		if err != nil {
			t.Fatalf("Locate: %v", err)
		}
		if got.Lat != 1 || got.Lon != 2 {
			t.Errorf("got %v; want device coordinate", got)
		}
	})

	t.Run("falls through to static", func(t *testing.T) {
		got, err := Chain{NewLatest(0), NewStatic(&home)}.Locate(context.Background())
		if err != nil {
			t.Fatalf("Locate: %v", err)
		}
		if got != home {
			t.Errorf("got %v; want %v", got, home)
		}
	})

	t.Run("all failing is denied", func(t *testing.T) {
		_, err := Chain{NewLatest(0), NewStatic(nil)}.Locate(context.Background())
		if !errors.Is(err, types.ErrLocationDenied) {
			t.Fatalf("err = %v; want ErrLocationDenied", err)
		}
	})

	t.Run("empty chain is denied", func(t *testing.T) {
		_, err := Chain{}.Locate(context.Background())
		if !errors.Is(err, types.ErrLocationDenied) {
			t.Fatalf("err = %v; want ErrLocationDenied", err)
		}
	})
}
