package market

import (
	"math/rand"
	"testing"
)

func TestClassifyTiers(t *testing.T) {
	pool := []DriverPoints{
		{DriverID: 1, Points: 300}, // leader -> A
		{DriverID: 2, Points: 250}, // 83% -> A
		{DriverID: 3, Points: 210}, // 70% -> A
		{DriverID: 4, Points: 150}, // 50% -> B
		{DriverID: 5, Points: 120}, // 40% -> B
		{DriverID: 6, Points: 119}, // 39.6% -> C
		{DriverID: 7, Points: 0},   // C
	}

	table := ClassifyTiers(pool)

	if got, want := len(table.A), 3; got != want {
		t.Fatalf("tier A size = %d, want %d", got, want)
	}
	if got, want := len(table.B), 2; got != want {
		t.Fatalf("tier B size = %d, want %d", got, want)
	}
	if got, want := len(table.C), 2; got != want {
		t.Fatalf("tier C size = %d, want %d", got, want)
	}
	if table.A[0] != 1 {
		t.Fatalf("expected leader first in tier A, got %d", table.A[0])
	}
}

func TestClassifyTiersAllZeroPoints(t *testing.T) {
	pool := []DriverPoints{
		{DriverID: 1, Points: 0},
		{DriverID: 2, Points: 0},
	}

	table := ClassifyTiers(pool)
	if len(table.C) != 2 {
		t.Fatalf("expected every pointless driver in tier C, got %+v", table)
	}
}

func TestClassifyTiersEmpty(t *testing.T) {
	table := ClassifyTiers(nil)
	if len(table.A)+len(table.B)+len(table.C) != 0 {
		t.Fatalf("expected empty table, got %+v", table)
	}
}

func TestSampleStarterPackPrefersLowTiers(t *testing.T) {
	pool := []DriverPoints{
		{DriverID: 1, Points: 300},
		{DriverID: 2, Points: 280},
		{DriverID: 3, Points: 40},
		{DriverID: 4, Points: 30},
		{DriverID: 5, Points: 10},
		{DriverID: 6, Points: 0},
	}

	rng := rand.New(rand.NewSource(42))
	picked, err := SampleStarterPack(rng, pool, 3)
	if err != nil {
		t.Fatalf("sample starter pack: %v", err)
	}
	if len(picked) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(picked))
	}

	seen := make(map[int64]struct{}, len(picked))
	for _, id := range picked {
		if id == 1 || id == 2 {
			t.Fatalf("tier A driver %d picked while low tiers had enough candidates", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("driver %d picked twice", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSampleStarterPackFallsBackToWholePool(t *testing.T) {
	pool := []DriverPoints{
		{DriverID: 1, Points: 300},
		{DriverID: 2, Points: 290},
		{DriverID: 3, Points: 280},
		{DriverID: 4, Points: 10},
	}

	rng := rand.New(rand.NewSource(7))
	picked, err := SampleStarterPack(rng, pool, 3)
	if err != nil {
		t.Fatalf("sample starter pack: %v", err)
	}
	if len(picked) != 3 {
		t.Fatalf("expected 3 drivers, got %d", len(picked))
	}
}

func TestSampleStarterPackNotEnoughDrivers(t *testing.T) {
	pool := []DriverPoints{{DriverID: 1, Points: 0}, {DriverID: 2, Points: 0}}

	rng := rand.New(rand.NewSource(1))
	if _, err := SampleStarterPack(rng, pool, 3); err == nil {
		t.Fatal("expected error with fewer free drivers than requested")
	}
}

func TestSampleStarterPackDeterministicWithSeed(t *testing.T) {
	pool := []DriverPoints{
		{DriverID: 1, Points: 0},
		{DriverID: 2, Points: 5},
		{DriverID: 3, Points: 12},
		{DriverID: 4, Points: 20},
		{DriverID: 5, Points: 33},
	}

	first, err := SampleStarterPack(rand.New(rand.NewSource(99)), pool, 3)
	if err != nil {
		t.Fatalf("sample starter pack: %v", err)
	}
	second, err := SampleStarterPack(rand.New(rand.NewSource(99)), pool, 3)
	if err != nil {
		t.Fatalf("sample starter pack: %v", err)
	}

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("same seed produced different picks: %v vs %v", first, second)
		}
	}
}
