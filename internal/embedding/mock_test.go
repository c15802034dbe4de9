package embedding

import (
	"context"
	"math"
	"testing"
)

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	ctx := context.Background()
	a1, _ := e.Embed(ctx, "hello")
	a2, _ := e.Embed(ctx, "hello")
	b, _ := e.Embed(ctx, "world")

	for i := range a1 {
		if a1[i] != a2[i] {
			t.Fatal("same text produced different vectors")
		}
	}
	same := true
	for i := range a1 {
		if a1[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts produced identical vectors")
	}
}

func TestMockEmbedderUnitNorm(t *testing.T) {
	e := NewMockEmbedder(16)
	v, _ := e.Embed(context.Background(), "some text")
	if len(v) != 16 {
		t.Fatalf("dimensions = %d, want 16", len(v))
	}
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if math.Abs(sum-1.0) > 1e-5 {
		t.Errorf("norm^2 = %f, want 1", sum)
	}
}

func TestMockEmbedderBatch(t *testing.T) {
	e := NewMockEmbedder(4)
	out, err := e.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d embeddings, want 3", len(out))
	}
	single, _ := e.Embed(context.Background(), "b")
	for i := range single {
		if out[1][i] != single[i] {
			t.Fatal("batch and single embeddings differ")
		}
	}
}

func TestNormalizeL2ZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	NormalizeL2(v)
	for _, x := range v {
		if x != 0 {
			t.Fatal("zero vector must stay zero")
		}
	}
}

func TestHashTokenizerShape(t *testing.T) {
	tok := &HashTokenizer{}
	ids, mask, types := tok.Tokenize("one two three", 8)
	if len(ids) != 8 || len(mask) != 8 || len(types) != 8 {
		t.Fatalf("lengths = %d/%d/%d, want 8", len(ids), len(mask), len(types))
	}
	if ids[0] != clsTokenID {
		t.Errorf("ids[0] = %d, want [CLS]", ids[0])
	}
	// CLS + 3 words + SEP attended
	attended := 0
	for _, m := range mask {
		if m == 1 {
			attended++
		}
	}
	if attended != 5 {
		t.Errorf("attended = %d, want 5", attended)
	}
	if ids[4] != sepTokenID {
		t.Errorf("ids[4] = %d, want [SEP]", ids[4])
	}
}
