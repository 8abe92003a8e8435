package gen

import (
	"strings"

	"github.com/hyperpage/pagegen/linkcodec"
	"github.com/hyperpage/pagegen/schema"

	"github.com/brianvoe/gofakeit/v6"
)

// fakes fills documents with plausible random values. Links stay below the
// sample id band.
type fakes struct {
	faker *gofakeit.Faker
}

func (s fakes) primitive(f schema.FieldDescriptor, k int) any {
	p, _ := schema.ParsePrimitive(f.TypeName)
	switch p {
	case schema.Boolean:
		return s.faker.Bool()
	case schema.Integer:
		if f.Key == schema.PageIDKey {
			return int64(s.faker.IntRange(1, SampleLinkID-1))
		}
		return int64(s.faker.IntRange(0, 1000))
	case schema.Float:
		return s.faker.Float32Range(0, 100)
	case schema.Double:
		return s.faker.Float64Range(0, 1000)
	}

	key := strings.ToLower(f.Key)
	switch {
	case key == schema.PageNameKey:
		return s.faker.Name()
	case strings.Contains(key, "email"):
		return s.faker.Email()
	case strings.Contains(key, "url"):
		return s.faker.URL()
	default:
		return s.faker.Sentence(4)
	}
}

func (s fakes) link(target *schema.ObjectDescriptor, f schema.FieldDescriptor, k int) linkcodec.Reference {
	return linkcodec.Reference{
		Cat:  target.Category,
		ID:   int64(s.faker.IntRange(1, SampleLinkID-1)),
		Name: s.faker.Name(),
	}
}

// FakeDocument is SampleDocument with random values drawn from faker in place
// of the placeholders. A faker built from a fixed seed yields the same document
// every time.
func FakeDocument(set *schema.Set, d *schema.ObjectDescriptor, codec linkcodec.Codec, faker *gofakeit.Faker) (map[string]any, error) {
	return sampleObject(set, d, codec, fakes{faker: faker}, map[string]bool{})
}

// FakeSamples builds one random document per top-level descriptor, in load order.
func FakeSamples(set *schema.Set, codec linkcodec.Codec, faker *gofakeit.Faker) ([]Sample, error) {
	return buildSamples(set, codec, fakes{faker: faker})
}
