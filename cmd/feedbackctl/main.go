package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"feedbackinsights/internal/cli"
)

func main() {
	_ = godotenv.Load()

	var (
		apiBase = flag.String("api-base", "", "API base URL (env: FI_API_BASE)")
		outFmt  = flag.String("output", "json", "Output format: json|text")
		timeout = flag.Duration("timeout", 60*time.Second, "per-request timeout")
	)
	flag.Usage = func() { cli.Usage(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.Usage(os.Stderr)
		os.Exit(2)
	}

	base := strings.TrimSpace(*apiBase)
	if base == "" {
		base = strings.TrimSpace(os.Getenv("FI_API_BASE"))
	}
	if base == "" {
		base = "http://localhost:8000"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cctx := cli.Context{
		Ctx: ctx,
		Client: &cli.Client{
			BaseURL: strings.TrimRight(base, "/"),
			HTTP:    &http.Client{Timeout: *timeout},
		},
		Output: cli.Format(strings.TrimSpace(*outFmt)),
		Out:    os.Stdout,
		Err:    os.Stderr,
	}
	if err := cli.Dispatch(cctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
