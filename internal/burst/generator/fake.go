package generator

import (
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
)

const (
	minBodyWords = 100
	maxBodyWords = 101
)

// FakeProducer generates records with random UUIDv4 ids and lorem bodies of 100 or 101 words.
// A FakeProducer is not safe for concurrent use; give each core worker its own.
type FakeProducer struct {
	faker *gofakeit.Faker
}

// NewFakeProducer returns a producer seeded with seed. A seed of 0 picks a random seed.
// The seed only affects bodies; ids always come from the uuid package's random source.
func NewFakeProducer(seed int64) *FakeProducer {
	return &FakeProducer{
		faker: gofakeit.New(seed),
	}
}

func (p *FakeProducer) Batch(n int) []Record {
	if n <= 0 {
		return nil
	}
	records := make([]Record, n)
	for i := range records {
		records[i] = Record{
			Id:   uuid.NewString(),
			Body: p.faker.LoremIpsumSentence(p.faker.IntRange(minBodyWords, maxBodyWords)),
		}
	}
	return records
}
