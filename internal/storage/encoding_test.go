package storage

import (
	"bytes"
	"testing"
)

func TestEncodeEmbedding_LittleEndianLayout(t *testing.T) {
	// 1.0 as IEEE-754 float32 is 0x3F800000, stored little-endian.
	got := encodeEmbedding([]float32{1.0})
	want := []byte{0x00, 0x00, 0x80, 0x3F}
	if !bytes.Equal(got, want) {
		t.Errorf("encodeEmbedding(1.0) = % x, want % x", got, want)
	}
}

func TestEmbeddingRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.14159, 0}
	out, err := decodeEmbedding(encodeEmbedding(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(in) {
		t.Fatalf("length %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("index %d: %v != %v", i, out[i], in[i])
		}
	}
}

func TestDecodeEmbedding_BadLength(t *testing.T) {
	if _, err := decodeEmbedding([]byte{1, 2, 3}); err == nil {
		t.Error("blob length not divisible by 4 should fail")
	}
}

func TestDecodeTags(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"normal", `["a","b"]`, []string{"a", "b"}},
		{"empty array", `[]`, []string{}},
		{"empty string", "", []string{}},
		{"json null", "null", []string{}},
		{"malformed", `not json`, []string{}},
		{"wrong type", `{"a":1}`, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := decodeTags(c.raw)
			if got == nil {
				t.Fatal("tags must never be nil")
			}
			if len(got) != len(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("index %d: %q != %q", i, got[i], c.want[i])
				}
			}
		})
	}
}

func TestEncodeTags(t *testing.T) {
	if got := encodeTags(nil); got != "[]" {
		t.Errorf("nil tags encode as %q, want []", got)
	}
	if got := encodeTags([]string{"x"}); got != `["x"]` {
		t.Errorf("got %q", got)
	}
}
