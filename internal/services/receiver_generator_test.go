package services

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spad0604/robot-delivery/internal/domain"
)

func TestReceiverGeneratorRanges(t *testing.T) {
	g := NewReceiverGenerator(DefaultReceiverTables(), seeded(7))
	tables := DefaultReceiverTables()

	for i := 0; i < 200; i++ {
		r := g.Generate()

		parts := strings.SplitN(r.Name, " ", 2)
		assert.Len(t, parts, 2)
		assert.Contains(t, tables.LastNames, parts[0])
		assert.Contains(t, tables.FirstNames, parts[1])

		assert.Len(t, r.Phone, 10)
		assert.Contains(t, tables.PhonePrefixes, r.Phone[:3])

		assert.GreaterOrEqual(t, r.Age, domain.MinReceiverAge)
		assert.LessOrEqual(t, r.Age, domain.MaxReceiverAge)

		assert.Contains(t, tables.Goods, r.Goods)

		assert.GreaterOrEqual(t, r.Weight, domain.MinWeightKg)
		assert.LessOrEqual(t, r.Weight, domain.MaxWeightKg)
		assert.InDelta(t, math.Round(r.Weight*10)/10, r.Weight, 1e-9)
	}
}

func TestReceiverGeneratorCustomTables(t *testing.T) {
	g := NewReceiverGenerator(ReceiverTables{
		LastNames:  []string{"Trần"},
		FirstNames: []string{"Bình"},
		Goods:      []string{"Trà"},
	}, seeded(8))

	r := g.Generate()
	assert.Equal(t, "Trần Bình", r.Name)
	assert.Equal(t, "Trà", r.Goods)
	// Empty vocabularies fall back to the defaults.
	assert.Contains(t, DefaultReceiverTables().PhonePrefixes, r.Phone[:3])
}

func TestReceiverGeneratorConcurrentUse(t *testing.T) {
	g := NewReceiverGenerator(DefaultReceiverTables(), seeded(9))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				r := g.Generate()
				if r.Age < domain.MinReceiverAge || r.Age > domain.MaxReceiverAge {
					t.Errorf("age = %d, out of range", r.Age)
					return
				}
				_ = g.Phone()
			}
		}()
	}
	wg.Wait()
}
