package domain

import (
	"fmt"
	"sync"
	"testing"
)

func TestLocalizationMap_Insert(t *testing.T) {
	t.Parallel()

	t.Run("should ignore second insert of same hash", func(t *testing.T) {
		t.Parallel()

		m := NewLocalizationMap()
		first := NewTextRecord(Field{Name: "text", Value: "Hello"})
		second := NewTextRecord(Field{Name: "text", Value: "other"})

		if !m.Insert("abc", first) {
			t.Fatal("first insert should succeed")
		}
		if m.Insert("abc", second) {
			t.Error("second insert should report existing hash")
		}

		got, ok := m.Get("abc")
		if !ok {
			t.Fatal("expected entry for abc")
		}
		if !got.Equal(first) {
			t.Errorf("Get(abc) = %s, want %s", got, first)
		}
		if m.Len() != 1 {
			t.Errorf("Len() = %d, want 1", m.Len())
		}
	})

	t.Run("should keep insertion order", func(t *testing.T) {
		t.Parallel()

		m := NewLocalizationMap()
		for _, k := range []string{"c", "a", "b"} {
			m.Insert(k, TextRecord{})
		}

		keys := m.Keys()
		want := []string{"c", "a", "b"}
		for i := range want {
			if keys[i] != want[i] {
				t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
			}
		}
	})

	t.Run("should be safe for concurrent inserts", func(t *testing.T) {
		t.Parallel()

		m := NewLocalizationMap()
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				m.Insert(fmt.Sprintf("k%d", i%10), NewTextRecord(Field{Name: "text", Value: "v"}))
			}(i)
		}
		wg.Wait()

		if m.Len() != 10 {
			t.Errorf("Len() = %d, want 10", m.Len())
		}
	})
}

func TestLocalizationMap_MarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("should marshal empty map", func(t *testing.T) {
		t.Parallel()

		got, err := NewLocalizationMap().MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		if string(got) != "{}" {
			t.Errorf("MarshalJSON() = %s, want {}", got)
		}
	})

	t.Run("should marshal entries in insertion order", func(t *testing.T) {
		t.Parallel()

		m := NewLocalizationMap()
		m.Insert("ff", NewTextRecord(Field{Name: "text", Value: "B"}))
		m.Insert("00", NewTextRecord(Field{Name: "title", Value: "A"}))

		got, err := m.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON() error = %v", err)
		}
		want := `{"ff":{"text":"B"},"00":{"title":"A"}}`
		if string(got) != want {
			t.Errorf("MarshalJSON() = %s, want %s", got, want)
		}
	})
}

func TestLocalizationMap_Range(t *testing.T) {
	t.Parallel()

	m := NewLocalizationMap()
	m.Insert("a", TextRecord{})
	m.Insert("b", TextRecord{})
	m.Insert("c", TextRecord{})

	var seen []string
	m.Range(func(hash string, _ TextRecord) bool {
		seen = append(seen, hash)
		return hash != "b"
	})

	if len(seen) != 2 {
		t.Errorf("Range visited %v, want stop after b", seen)
	}
}
