package cli

import (
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"feedbackinsights/internal/models"
)

// SeedLabels is the starting vocabulary offered to the zero-shot model.
var SeedLabels = []string{
	"qualidade", "durabilidade", "desempenho", "funcionalidade", "design",
	"ergonomia", "material", "tamanho", "cor", "acessórios",
	"entrega", "prazo_entrega", "frete", "rastreamento", "embalagem",
	"instalação", "garantia", "suporte", "preço", "valor",
	"promoção", "desconto", "pagamento", "parcelamento", "atendimento",
	"resposta", "solucao", "reclamacao", "elogio", "sugestao",
}

type seedProduct struct {
	ID       string
	Name     string
	MinPrice int
	MaxPrice int
}

var seedProducts = []seedProduct{
	{"P100", "Smartphone X Pro", 2500, 4000},
	{"P101", "Notebook Ultra Slim", 3500, 8500},
	{"P102", "Fone Bluetooth Elite", 200, 600},
	{"P103", "Smart TV 55\" 4K", 2500, 5500},
	{"P105", "Smartwatch Fitness", 400, 1200},
	{"P108", "Caixa de Som Bluetooth", 150, 800},
	{"P110", "Monitor Gamer 27\"", 1200, 3000},
	{"P111", "Teclado Mecânico RGB", 200, 800},
	{"P112", "Mouse Sem Fio", 50, 300},
	{"P114", "SSD 500GB", 300, 700},
	{"P117", "Roteador Wi-Fi 6", 300, 900},
	{"P119", "Carregador Portátil 20000mAh", 100, 400},
	{"P120", "Geladeira Frost Free", 2000, 6000},
	{"P122", "Máquina de Lavar 12kg", 1500, 4000},
	{"P124", "Ar Condicionado Split", 1500, 5000},
	{"P125", "Aspirador Robô", 800, 3000},
	{"P130", "Sofá 3 Lugares", 1200, 5000},
	{"P132", "Cama Queen Size", 1000, 4000},
	{"P135", "Poltrona Reclinável", 500, 2500},
	{"P140", "Tênis Esportivo", 150, 600},
	{"P144", "Jaqueta de Couro", 300, 1200},
	{"P146", "Relógio de Pulso", 200, 2000},
	{"P150", "Bicicleta Esportiva", 800, 5000},
	{"P151", "Esteira Elétrica", 1500, 6000},
	{"P159", "Mochila para Trekking", 150, 700},
	{"P161", "Secador de Cabelo", 80, 500},
	{"P164", "Perfume Importado", 120, 800},
	{"P170", "Livro Best-seller", 30, 120},
	{"P180", "Carrinho de Bebê", 400, 2000},
	{"P188", "Cadeirinha para Carro", 300, 1200},
}

var seedComments = []string{
	"Adorei o produto! Superou minhas expectativas.",
	"Excelente qualidade, vale cada centavo.",
	"Entrega rápida e produto perfeito.",
	"Recomendo a todos, muito satisfeito!",
	"Funciona perfeitamente, atendimento impecável.",
	"Material premium, acabamento perfeito.",
	"Chegou antes do prazo, muito bem embalado.",
	"Logística impecável, rastreamento preciso.",
	"Vendedor muito atencioso, superou expectativas.",
	"Melhor custo-benefício que já vi no mercado.",
	"Design moderno e ergonômico, muito confortável.",
	"Bateria dura dias, exatamente como anunciado.",
	"Marca confiável, garantia extensa.",

	"O produto é bom, mas a entrega atrasou um pouco.",
	"Cumpriu o básico, nada excepcional.",
	"Produto ok, mas a embalagem poderia ser melhor.",
	"Funciona, mas o design poderia ser mais moderno.",
	"Entrega no prazo, produto conforme descrito.",
	"Frete um pouco caro para o serviço oferecido.",
	"Atendimento padrão, nem bom nem ruim.",
	"Qualidade aceitável para o valor pago.",
	"Tamanho adequado, nem grande nem pequeno demais.",
	"Cor corresponde à mostrada no site, sem surpresas.",
	"Parcelamento sem juros, como é comum encontrar.",
	"Nem caro nem barato para a categoria.",

	"Produto veio com defeito, muito decepcionado.",
	"Péssima qualidade, não vale o preço.",
	"Material frágil, quebrou com pouco uso.",
	"Entrega atrasou mais de uma semana.",
	"Embalagem veio totalmente amassada e danificada.",
	"Kit incompleto, faltavam acessórios essenciais.",
	"Atendimento horrível, não resolveram meu problema.",
	"Quebrou após uma semana de uso.",
	"Ergonômico? Mais como desconfortável!",
	"Assistência técnica não honra a garantia.",
	"Caríssimo para a qualidade oferecida.",
	"Promoção enganosa, preço inflado.",
	"Nota zero, produto horrível!",
}

// SeedReport summarises a seed run.
type SeedReport struct {
	LabelsCreated   int            `json:"labels_created"`
	LabelsExisting  int            `json:"labels_existing"`
	Purchases       int            `json:"purchases"`
	Feedbacks       int            `json:"feedbacks"`
	Sentiments      map[string]int `json:"sentiments"`
	LabelsAttached  int            `json:"labels_attached"`
	ElapsedSeconds  float64        `json:"elapsed_seconds"`
	FirstPurchaseID uint64         `json:"first_purchase_id,omitempty"`
}

func seedCmd(ctx Context, args []string) error {
	fs := newFlagSet(ctx, "seed")
	purchases := fs.Int("purchases", 200, "purchases to create, each with one feedback")
	seed := fs.Uint64("seed", 0, "random seed (0 uses the clock)")
	labelsOnly := fs.Bool("labels-only", false, "only create the label vocabulary")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *purchases < 0 {
		return fmt.Errorf("--purchases must be >= 0")
	}
	n := *purchases
	if *labelsOnly {
		n = 0
	}
	s := *seed
	if s == 0 {
		s = uint64(time.Now().UnixNano())
	}
	report, err := Seed(ctx, n, rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15)))
	if err != nil {
		return err
	}
	return ctx.write(report)
}

// Seed creates the label vocabulary, then n purchases with one sampled
// comment each. Labels that already exist are left untouched.
func Seed(ctx Context, n int, rng *rand.Rand) (SeedReport, error) {
	start := time.Now()
	report := SeedReport{Sentiments: map[string]int{}}

	for _, name := range SeedLabels {
		body := map[string]string{"name": name, "description": "Rótulo para " + name}
		err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/labels", body, nil)
		switch {
		case err == nil:
			report.LabelsCreated++
		case IsStatus(err, http.StatusConflict):
			report.LabelsExisting++
		default:
			return report, fmt.Errorf("create label %s: %w", name, err)
		}
	}

	for i := 1; i <= n; i++ {
		product := seedProducts[rng.IntN(len(seedProducts))]
		price := product.MinPrice + rng.IntN(product.MaxPrice-product.MinPrice+1)
		body := map[string]any{
			"customer_id":  fmt.Sprintf("CUST%d", 1000+i),
			"product_id":   product.ID,
			"product_name": product.Name,
			"amount":       decimal.NewFromInt(int64(price)),
		}
		var purchase models.Purchase
		if err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/purchases", body, &purchase); err != nil {
			return report, fmt.Errorf("create purchase %d: %w", i, err)
		}
		report.Purchases++
		if report.FirstPurchaseID == 0 {
			report.FirstPurchaseID = purchase.ID
		}

		comment := seedComments[rng.IntN(len(seedComments))]
		var fb models.Feedback
		fbBody := map[string]any{"purchase_id": purchase.ID, "comment": comment}
		if err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/feedbacks", fbBody, &fb); err != nil {
			return report, fmt.Errorf("create feedback for purchase %d: %w", purchase.ID, err)
		}
		report.Feedbacks++
		report.Sentiments[fb.SentimentLabel]++
		report.LabelsAttached += len(fb.Labels)
		if ctx.Output == FormatText {
			fmt.Fprintf(ctx.Err, "purchase %d: %s (%s)\n", purchase.ID, truncate(comment, 30), fb.SentimentLabel)
		}
	}
	report.ElapsedSeconds = time.Since(start).Seconds()
	return report, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
