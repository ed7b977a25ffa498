package inference

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// RulesBackend is a keyword classifier for offline development and seeding.
// It needs no network and gives stable answers for the same input.
type RulesBackend struct {
	SentimentRules []LabelRule
	TopicRules     []LabelRule
	Logger         *zap.Logger

	sentiment []LabelRule
	topics    map[string]LabelRule
}

// LabelRule maps regexes to a label with a fixed confidence.
type LabelRule struct {
	Label      string
	Patterns   []string
	Confidence float64

	compiled []*regexp.Regexp
}

func NewRules(logger *zap.Logger) *RulesBackend {
	return &RulesBackend{
		SentimentRules: DefaultSentimentRules(),
		TopicRules:     DefaultTopicRules(),
		Logger:         logger,
	}
}

func DefaultSentimentRules() []LabelRule {
	return []LabelRule{
		{
			Label: LabelPositive,
			Patterns: []string{
				words(`adorei`, `amei`, `excelente`, `[óo]tim[oa]`, `perfeit[oa]`, `maravilhos[oa]`, `recomendo`, `bom`, `boa`, `gostei`, `satisfeit[oa]`, `r[áa]pid[oa]`),
				words(`love[ds]?`, `great`, `excellent`, `perfect`, `amazing`, `good`, `recommend`, `happy`, `fast`),
			},
			Confidence: 0.9,
		},
		{
			Label: LabelNegative,
			Patterns: []string{
				words(`p[ée]ssim[oa]`, `horr[íi]vel`, `ruim`, `quebrad[oa]`, `defeito`, `atrasad[oa]`, `atraso`, `decepcionad[oa]`, `insatisfeit[oa]`, `demor(ou|ada|ado)`, `nunca chegou`),
				words(`terrible`, `awful`, `bad`, `broken`, `defective`, `late`, `delayed`, `disappointed`, `worst`, `never arrived`),
			},
			Confidence: 0.9,
		},
	}
}

// DefaultTopicRules covers the seeded vocabulary. Candidates without a rule
// match on their own name.
func DefaultTopicRules() []LabelRule {
	return []LabelRule{
		{Label: "qualidade", Patterns: []string{`(?i)qualidade|quality|bem feito|acabamento`}, Confidence: 0.85},
		{Label: "durabilidade", Patterns: []string{`(?i)durabilidade|durável|duravel|quebrou|durou|durable`}, Confidence: 0.8},
		{Label: "desempenho", Patterns: []string{`(?i)desempenho|performance|rápido|rapido|lento|travando`}, Confidence: 0.8},
		{Label: "funcionalidade", Patterns: []string{`(?i)funcionalidade|funciona|funcionou|recurso`}, Confidence: 0.75},
		{Label: "design", Patterns: []string{`(?i)design|bonit[oa]|visual|estilo`}, Confidence: 0.8},
		{Label: "ergonomia", Patterns: []string{`(?i)ergonomi|confortável|confortavel|desconfort`}, Confidence: 0.8},
		{Label: "material", Patterns: []string{`(?i)material|plástico|plastico|metal|tecido`}, Confidence: 0.8},
		{Label: "tamanho", Patterns: []string{`(?i)tamanho|pequen[oa]|grande|size`}, Confidence: 0.75},
		{Label: "cor", Patterns: []string{`(?i)\bcor(es)?\b|colou?r`}, Confidence: 0.75},
		{Label: "acessórios", Patterns: []string{`(?i)acessório|acessorio|carregador|cabo|fone`}, Confidence: 0.75},
		{Label: "entrega", Patterns: []string{`(?i)entreg|chegou|deliver`}, Confidence: 0.85},
		{Label: "prazo_entrega", Patterns: []string{`(?i)prazo|atras|antes do previsto|demorou`}, Confidence: 0.8},
		{Label: "frete", Patterns: []string{`(?i)frete|shipping`}, Confidence: 0.85},
		{Label: "rastreamento", Patterns: []string{`(?i)rastrei|tracking`}, Confidence: 0.85},
		{Label: "embalagem", Patterns: []string{`(?i)embalage|caixa|packag`}, Confidence: 0.85},
		{Label: "instalação", Patterns: []string{`(?i)instala|montage|setup`}, Confidence: 0.8},
		{Label: "garantia", Patterns: []string{`(?i)garantia|warranty`}, Confidence: 0.85},
		{Label: "suporte", Patterns: []string{`(?i)suporte|support|assistência|assistencia`}, Confidence: 0.8},
		{Label: "preço", Patterns: []string{`(?i)preço|preco|caro|barat[oa]|price`}, Confidence: 0.85},
		{Label: "valor", Patterns: []string{`(?i)custo.benef|vale a pena|valor|value`}, Confidence: 0.75},
		{Label: "promoção", Patterns: []string{`(?i)promoç|promoc|oferta|black friday`}, Confidence: 0.8},
		{Label: "desconto", Patterns: []string{`(?i)desconto|cupom|discount`}, Confidence: 0.8},
		{Label: "pagamento", Patterns: []string{`(?i)pagamento|pix|boleto|cartão|cartao|payment`}, Confidence: 0.8},
		{Label: "parcelamento", Patterns: []string{`(?i)parcel|sem juros|installment`}, Confidence: 0.8},
		{Label: "atendimento", Patterns: []string{`(?i)atendimento|atendente|vendedor|customer service`}, Confidence: 0.85},
		{Label: "resposta", Patterns: []string{`(?i)respond|resposta|retorno`}, Confidence: 0.75},
		{Label: "solucao", Patterns: []string{`(?i)soluç|soluc|resolv`}, Confidence: 0.75},
		{Label: "reclamacao", Patterns: []string{`(?i)reclam|complain|péssim|pessim`}, Confidence: 0.75},
		{Label: "elogio", Patterns: []string{`(?i)parabéns|parabens|excelente|adorei|amei`}, Confidence: 0.7},
		{Label: "sugestao", Patterns: []string{`(?i)sugest|poderia|deveria|seria bom`}, Confidence: 0.75},
	}
}

func (b *RulesBackend) Name() string { return "rules" }

// Load compiles every pattern. A bad pattern fails the load.
func (b *RulesBackend) Load(ctx context.Context) error {
	_ = ctx
	sentiment, err := compileRules(b.SentimentRules)
	if err != nil {
		return err
	}
	topics, err := compileRules(b.TopicRules)
	if err != nil {
		return err
	}
	b.sentiment = sentiment
	b.topics = make(map[string]LabelRule, len(topics))
	for _, r := range topics {
		b.topics[r.Label] = r
	}
	return nil
}

func (b *RulesBackend) Sentiment(ctx context.Context, text string) (Sentiment, error) {
	_ = ctx
	best := Sentiment{Score: 0.5, Label: LabelNeutral}
	bestHits := 0
	for _, rule := range b.sentiment {
		hits := countMatches(rule, text)
		if hits > bestHits {
			best = Sentiment{Score: rule.Confidence, Label: rule.Label}
			bestHits = hits
		} else if hits > 0 && hits == bestHits {
			best = Sentiment{Score: 0.5, Label: LabelNeutral}
		}
	}
	return best, nil
}

func (b *RulesBackend) ZeroShot(ctx context.Context, text string, candidates []string) ([]LabelScore, error) {
	_ = ctx
	out := make([]LabelScore, 0, len(candidates))
	for _, c := range candidates {
		score := 0.05
		if rule, ok := b.topics[c]; ok {
			if countMatches(rule, text) > 0 {
				score = rule.Confidence
			}
		} else if matchName(c, text) {
			score = 0.9
		}
		out = append(out, LabelScore{Label: c, Score: score})
	}
	return out, nil
}

func (b *RulesBackend) Close() error { return nil }

func compileRules(rules []LabelRule) ([]LabelRule, error) {
	out := make([]LabelRule, len(rules))
	for i, r := range rules {
		r.compiled = nil
		for _, raw := range r.Patterns {
			re, err := regexp.Compile(raw)
			if err != nil {
				return nil, fmt.Errorf("rule %q: compile %q: %w", r.Label, raw, err)
			}
			r.compiled = append(r.compiled, re)
		}
		out[i] = r
	}
	return out, nil
}

// words matches any alternative as a whole word. \b is ASCII-only in RE2,
// so letter boundaries are spelled out to cover accented Portuguese.
func words(alternatives ...string) string {
	return `(?i)(?:^|[^\p{L}])(?:` + strings.Join(alternatives, "|") + `)(?:[^\p{L}]|$)`
}

func countMatches(rule LabelRule, text string) int {
	n := 0
	for _, re := range rule.compiled {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

func matchName(name, text string) bool {
	needle := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", " "))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), needle)
}
