package skema_test

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/reoring/skema"
	"github.com/reoring/skema/jsonschema"
)

// ---- Helpers ----

func smallUserSchema(strict bool) *skema.Node {
	n := skema.Object(
		skema.Prop("id", skema.String()),
		skema.Prop("name", skema.String().Optional()),
	)
	if strict {
		return n.Strict()
	}
	return n
}

func smallUserJSON() []byte {
	return []byte(`{"id":"u_1","name":"alice"}`)
}

// generateHugeJSONArray returns a JSON array of objects of the form:
// [{"id":"obj_0","name":"n0","age":0,"active":true,"meta":{"score":0},"k0":"v0",...}, ...]
func generateHugeJSONArray(numObjects int, extraFields int) []byte {
	var buf bytes.Buffer
	buf.Grow(numObjects * (64 + extraFields*16))
	buf.WriteByte('[')
	for i := 0; i < numObjects; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		fmt.Fprintf(&buf, "\"id\":\"obj_%d\",", i)
		fmt.Fprintf(&buf, "\"name\":\"n%d\",", i)
		fmt.Fprintf(&buf, "\"age\":%d,", i)
		if i%2 == 0 {
			buf.WriteString("\"active\":true,")
		} else {
			buf.WriteString("\"active\":false,")
		}
		fmt.Fprintf(&buf, "\"meta\":{\"score\":%d}", i)
		for k := 0; k < extraFields; k++ {
			buf.WriteString(",\"k" + strconv.Itoa(k) + "\":\"v" + strconv.Itoa(i) + "_" + strconv.Itoa(k) + "\"")
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// hugeItemSchema checks a few fields and strips the rest.
func hugeItemSchema() *skema.Node {
	return skema.Object(
		skema.Prop("id", skema.String().StartsWith("obj_")),
		skema.Prop("age", skema.Number().Int().Nonnegative()),
		skema.Prop("meta", skema.Object(skema.Prop("score", skema.Number()))),
	)
}

// ---- Micro benchmarks (small inputs) ----

func Benchmark_ParseJSON_Object_Small_Strict(b *testing.B) {
	benchParseJSON(b, smallUserSchema(true), smallUserJSON())
}

func Benchmark_ParseJSON_Object_Small_Strip(b *testing.B) {
	benchParseJSON(b, smallUserSchema(false), smallUserJSON())
}

func Benchmark_Parse_Object_Small_Decoded(b *testing.B) {
	ctx := context.Background()
	s := smallUserSchema(true)
	input := map[string]any{"id": "u_1", "name": "alice"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.Parse(ctx, input); err != nil {
			b.Fatal(err)
		}
	}
}

func Benchmark_ParseJSON_NumberMode_JSONNumber(b *testing.B) {
	s := skema.Object(
		skema.Prop("a", skema.Number()),
		skema.Prop("b", skema.Number()),
		skema.Prop("c", skema.Number()),
	)
	benchParseJSON(b, s, []byte(`{"a":1,"b":2.5,"c":-3.75}`), skema.ParseOpt{NumberMode: skema.NumberJSONNumber})
}

// ---- Macro benchmarks (huge JSON) ----

// 10k objects with 8 extra fields each
const (
	hugeObjects   = 10000
	hugeExtraKeys = 8
)

func Benchmark_ParseJSON_HugeArray_Objects(b *testing.B) {
	benchParseJSON(b, skema.Array(hugeItemSchema()), generateHugeJSONArray(hugeObjects, hugeExtraKeys))
}

func Benchmark_ParseJSON_HugeArray_Objects_DupCheck(b *testing.B) {
	benchParseJSON(b, skema.Array(hugeItemSchema()), generateHugeJSONArray(hugeObjects, hugeExtraKeys),
		skema.ParseOpt{Strictness: skema.Strictness{OnDuplicateKey: skema.SeverityError}})
}

func Benchmark_ParseAsync_HugeArray_Objects(b *testing.B) {
	ctx := context.Background()
	s := skema.Array(hugeItemSchema())
	input, err := skema.ParseJSON(ctx, skema.Any(), generateHugeJSONArray(hugeObjects, hugeExtraKeys))
	if err != nil {
		b.Fatal(err)
	}
	for _, conc := range []int{0, 8} {
		b.Run("conc="+strconv.Itoa(conc), func(b *testing.B) {
			opt := skema.ParseOpt{MaxConcurrency: conc}
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := s.ParseAsync(ctx, input, opt); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// ---- Transforms ----

func Benchmark_JSONSchema_RoundTrip(b *testing.B) {
	n := skema.Array(hugeItemSchema())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		doc, err := jsonschema.FromNode(n).JSON()
		if err != nil {
			b.Fatal(err)
		}
		if _, err := jsonschema.Import(doc); err != nil {
			b.Fatal(err)
		}
	}
}

func benchParseJSON(b *testing.B, s *skema.Node, data []byte, opts ...skema.ParseOpt) {
	b.Helper()
	ctx := context.Background()
	b.ReportAllocs()
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := skema.ParseJSON(ctx, s, data, opts...); err != nil {
			b.Fatal(err)
		}
	}
}
