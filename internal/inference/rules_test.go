package inference

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func loadedRules(t *testing.T) *RulesBackend {
	t.Helper()
	b := NewRules(nil)
	require.NoError(t, b.Load(context.Background()))
	return b
}

func TestRulesSentiment(t *testing.T) {
	b := loadedRules(t)
	tests := []struct {
		text string
		want string
	}{
		{"Adorei o produto! Excelente qualidade.", LabelPositive},
		{"Ótimo, chegou rápido", LabelPositive},
		{"Péssimo, veio quebrado e com defeito", LabelNegative},
		{"The package arrived late and broken", LabelNegative},
		{"Produto conforme descrito", LabelNeutral},
	}
	for _, tt := range tests {
		got, err := b.Sentiment(context.Background(), tt.text)
		require.NoError(t, err)
		if got.Label != tt.want {
			t.Fatalf("Sentiment(%q) = %q, want %q", tt.text, got.Label, tt.want)
		}
	}
}

func TestRulesZeroShot(t *testing.T) {
	b := loadedRules(t)
	scores, err := b.ZeroShot(context.Background(), "A entrega atrasou mas a qualidade é boa", []string{"entrega", "qualidade", "frete", "bateria"})
	require.NoError(t, err)
	got := map[string]float64{}
	for _, s := range scores {
		got[s.Label] = s.Score
	}
	if got["entrega"] <= 0.5 || got["qualidade"] <= 0.5 {
		t.Fatalf("expected entrega and qualidade above threshold, got %v", got)
	}
	if got["frete"] > 0.5 || got["bateria"] > 0.5 {
		t.Fatalf("expected frete and bateria below threshold, got %v", got)
	}
}

func TestRulesNameFallback(t *testing.T) {
	b := loadedRules(t)
	scores, err := b.ZeroShot(context.Background(), "a bateria dura pouco", []string{"bateria"})
	require.NoError(t, err)
	require.Len(t, scores, 1)
	require.Greater(t, scores[0].Score, 0.5)
}

func TestRulesLoadRejectsBadPattern(t *testing.T) {
	b := &RulesBackend{TopicRules: []LabelRule{{Label: "x", Patterns: []string{"("}}}}
	require.Error(t, b.Load(context.Background()))
}
