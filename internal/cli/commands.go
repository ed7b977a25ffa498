package cli

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type listMeta struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasNext bool  `json:"has_next"`
}

func newFlagSet(ctx Context, name string) *flag.FlagSet {
	fs := flag.NewFlagSet("feedbackctl "+name, flag.ContinueOnError)
	fs.SetOutput(ctx.Err)
	return fs
}

func purchaseCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("purchase subcommand required: create|list|get")
	}
	switch args[0] {
	case "create":
		fs := newFlagSet(ctx, "purchase create")
		customer := fs.String("customer", "", "customer id")
		product := fs.String("product", "", "product id")
		name := fs.String("name", "", "product name")
		amount := fs.String("amount", "", "amount, e.g. 3000.00")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*customer) == "" || strings.TrimSpace(*product) == "" || strings.TrimSpace(*name) == "" {
			return errors.New("--customer, --product and --name required")
		}
		amt, err := decimal.NewFromString(strings.TrimSpace(*amount))
		if err != nil {
			return fmt.Errorf("--amount: %w", err)
		}
		body := map[string]any{
			"customer_id":  strings.TrimSpace(*customer),
			"product_id":   strings.TrimSpace(*product),
			"product_name": strings.TrimSpace(*name),
			"amount":       amt,
		}
		var out any
		if err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/purchases", body, &out); err != nil {
			return err
		}
		return ctx.write(out)

	case "list":
		fs := newFlagSet(ctx, "purchase list")
		skip, limit := pageFlags(fs)
		customer := fs.String("customer", "", "filter by customer id")
		product := fs.String("product", "", "filter by product id")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		q := pageValues(*skip, *limit)
		setIf(q, "customer_id", *customer)
		setIf(q, "product_id", *product)
		return listCall(ctx, "/api/v1/purchases", q)

	case "get":
		id, err := idArg(args[1:])
		if err != nil {
			return err
		}
		return getCall(ctx, "/api/v1/purchases/"+id)

	default:
		return fmt.Errorf("unknown purchase subcommand: %s", args[0])
	}
}

func labelCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("label subcommand required: create|list")
	}
	switch args[0] {
	case "create":
		fs := newFlagSet(ctx, "label create")
		name := fs.String("name", "", "label name")
		desc := fs.String("description", "", "label description")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" {
			return errors.New("--name required")
		}
		var out any
		body := map[string]string{"name": strings.TrimSpace(*name), "description": *desc}
		if err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/labels", body, &out); err != nil {
			return err
		}
		return ctx.write(out)

	case "list":
		fs := newFlagSet(ctx, "label list")
		skip, limit := pageFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return listCall(ctx, "/api/v1/labels", pageValues(*skip, *limit))

	default:
		return fmt.Errorf("unknown label subcommand: %s", args[0])
	}
}

func feedbackCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("feedback subcommand required: create|list|get|summary")
	}
	switch args[0] {
	case "create":
		fs := newFlagSet(ctx, "feedback create")
		purchase := fs.Uint64("purchase", 0, "purchase id")
		comment := fs.String("comment", "", "comment text")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *purchase == 0 || strings.TrimSpace(*comment) == "" {
			return errors.New("--purchase and --comment required")
		}
		var out any
		body := map[string]any{"purchase_id": *purchase, "comment": *comment}
		if err := ctx.Client.call(ctx.context(), http.MethodPost, "/api/v1/feedbacks", body, &out); err != nil {
			return err
		}
		return ctx.write(out)

	case "list":
		fs := newFlagSet(ctx, "feedback list")
		skip, limit := pageFlags(fs)
		filter := feedbackFilterFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		q := pageValues(*skip, *limit)
		filter.apply(q)
		return listCall(ctx, "/api/v1/feedbacks", q)

	case "get":
		id, err := idArg(args[1:])
		if err != nil {
			return err
		}
		return getCall(ctx, "/api/v1/feedbacks/"+id)

	case "summary":
		fs := newFlagSet(ctx, "feedback summary")
		filter := feedbackFilterFlags(fs)
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		q := url.Values{}
		filter.apply(q)
		return getCall(ctx, withQuery("/api/v1/feedbacks/summary", q))

	default:
		return fmt.Errorf("unknown feedback subcommand: %s", args[0])
	}
}

func switchCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("switch subcommand required: list|set")
	}
	switch args[0] {
	case "list":
		return getCall(ctx, "/api/v1/settings/switches")
	case "set":
		fs := newFlagSet(ctx, "switch set")
		name := fs.String("name", "", "switch name, e.g. labeling")
		enabled := fs.Bool("enabled", true, "switch value")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*name) == "" {
			return errors.New("--name required")
		}
		var out any
		path := "/api/v1/settings/switches/" + url.PathEscape(strings.TrimSpace(*name))
		if err := ctx.Client.call(ctx.context(), http.MethodPut, path, map[string]bool{"enabled": *enabled}, &out); err != nil {
			return err
		}
		return ctx.write(out)
	default:
		return fmt.Errorf("unknown switch subcommand: %s", args[0])
	}
}

func statsCmd(ctx Context, args []string) error {
	if len(args) == 0 || args[0] != "daily" {
		return errors.New("stats subcommand required: daily")
	}
	fs := newFlagSet(ctx, "stats daily")
	from := fs.String("from", "", "YYYY-MM-DD")
	to := fs.String("to", "", "YYYY-MM-DD, inclusive")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	q := url.Values{}
	setIf(q, "from", *from)
	setIf(q, "to", *to)
	return getCall(ctx, withQuery("/api/v1/stats/daily", q))
}

func healthCmd(ctx Context, args []string) error {
	_ = args
	var live, ready map[string]string
	if err := ctx.Client.Raw(ctx.context(), "/healthz", &live); err != nil {
		return err
	}
	readyErr := ctx.Client.Raw(ctx.context(), "/readyz", &ready)
	out := map[string]any{"live": live["status"], "ready": ready["status"]}
	if err := ctx.write(out); err != nil {
		return err
	}
	return readyErr
}

type feedbackFilter struct {
	purchase  *uint64
	sentiment *string
	label     *string
	from      *string
	to        *string
}

func feedbackFilterFlags(fs *flag.FlagSet) feedbackFilter {
	return feedbackFilter{
		purchase:  fs.Uint64("purchase", 0, "filter by purchase id"),
		sentiment: fs.String("sentiment", "", "Positivo|Neutro|Negativo, comma separated"),
		label:     fs.String("label", "", "label names, comma separated"),
		from:      fs.String("from", "", "YYYY-MM-DD or RFC3339"),
		to:        fs.String("to", "", "YYYY-MM-DD or RFC3339, inclusive"),
	}
}

func (f feedbackFilter) apply(q url.Values) {
	if *f.purchase > 0 {
		q.Set("purchase_id", strconv.FormatUint(*f.purchase, 10))
	}
	setIf(q, "sentiment", *f.sentiment)
	setIf(q, "label", *f.label)
	setIf(q, "from", *f.from)
	setIf(q, "to", *f.to)
}

func pageFlags(fs *flag.FlagSet) (*int, *int) {
	skip := fs.Int("skip", 0, "rows to skip")
	limit := fs.Int("limit", 0, "page size (server default 200)")
	return skip, limit
}

func pageValues(skip, limit int) url.Values {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}

func setIf(q url.Values, key, val string) {
	if v := strings.TrimSpace(val); v != "" {
		q.Set(key, v)
	}
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

func idArg(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("id required")
	}
	id, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 64)
	if err != nil || id == 0 {
		return "", fmt.Errorf("invalid id: %s", args[0])
	}
	return strconv.FormatUint(id, 10), nil
}

func listCall(ctx Context, path string, q url.Values) error {
	req, err := ctx.Client.NewRequest(ctx.context(), http.MethodGet, withQuery(path, q), nil)
	if err != nil {
		return err
	}
	var items []any
	var meta listMeta
	if err := ctx.Client.Do(req, &items, &meta); err != nil {
		return err
	}
	if ctx.Output == FormatText {
		if err := ctx.write(items); err != nil {
			return err
		}
		_, err := fmt.Fprintf(ctx.Out, "\n%d of %d (offset %d)\n", len(items), meta.Total, meta.Offset)
		return err
	}
	return ctx.write(map[string]any{"items": items, "meta": meta})
}

func getCall(ctx Context, path string) error {
	var out any
	if err := ctx.Client.call(ctx.context(), http.MethodGet, path, nil, &out); err != nil {
		return err
	}
	return ctx.write(out)
}
