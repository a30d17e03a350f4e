package snapshot

import (
	"sync"
	"testing"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

func TestStore_EmptyBeforeFirstPublish(t *testing.T) {
	s := NewStore()

	if s.Latest() != nil {
		t.Error("expected nil before first publish")
	}
	if _, ok := s.Age(time.Now()); ok {
		t.Error("expected no age before first publish")
	}
}

func TestStore_PublishReplacesWholesale(t *testing.T) {
	s := NewStore()
	now := time.Now()

	first := models.NewSnapshot(nil, []models.SeismicEvent{{ID: "q1", Magnitude: 3.0}}, nil, nil, now)
	s.Publish(first)

	second := models.NewSnapshot(nil, nil, nil, nil, now.Add(30*time.Second))
	s.Publish(second)

	got := s.Latest()
	if got != second {
		t.Error("expected the latest snapshot")
	}
	if got.TotalAlerts != 0 {
		t.Errorf("old contents leaked into new snapshot: %d alerts", got.TotalAlerts)
	}
	// The displaced snapshot stays valid for anyone still holding it.
	if len(first.Seismic) != 1 {
		t.Errorf("previous snapshot mutated: %+v", first)
	}
}

func TestStore_Age(t *testing.T) {
	s := NewStore()
	base := time.Now()

	s.Publish(models.NewSnapshot(nil, nil, nil, nil, base))

	age, ok := s.Age(base.Add(45 * time.Second))
	if !ok {
		t.Fatal("expected age available")
	}
	if age != 45*time.Second {
		t.Errorf("expected 45s, got %v", age)
	}
}

func TestStore_ConcurrentReadersAndWriters(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				s.Publish(models.NewSnapshot(nil, nil, nil, nil, time.Now()))
			}
		}()
	}
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				if sn := s.Latest(); sn != nil && sn.LastUpdated.IsZero() {
					t.Error("observed torn snapshot")
					return
				}
			}
		}()
	}
	wg.Wait()
}
