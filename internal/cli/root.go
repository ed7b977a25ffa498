package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
)

type Context struct {
	Ctx    context.Context
	Client *Client
	Output Format
	Out    io.Writer
	Err    io.Writer
}

func (c Context) context() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

func (c Context) write(v any) error {
	return Write(c.Out, c.Output, v)
}

func Usage(w io.Writer) {
	fmt.Fprint(w, `feedbackctl <command> <subcommand> [flags]

Global Flags:
  --api-base    API base URL (env: FI_API_BASE, default http://localhost:8000)
  --output      json|text (default json)
  --timeout     per-request timeout (default 60s)

Commands:
  purchase  create/list/get
  label     create/list
  feedback  create/list/get/summary
  switch    list/set
  stats     daily
  health    liveness and readiness
  seed      populate labels, purchases and feedbacks
`)
}

func Dispatch(ctx Context, args []string) error {
	if len(args) == 0 {
		Usage(ctx.Err)
		return errors.New("missing command")
	}
	switch args[0] {
	case "purchase":
		return purchaseCmd(ctx, args[1:])
	case "label":
		return labelCmd(ctx, args[1:])
	case "feedback":
		return feedbackCmd(ctx, args[1:])
	case "switch":
		return switchCmd(ctx, args[1:])
	case "stats":
		return statsCmd(ctx, args[1:])
	case "health":
		return healthCmd(ctx, args[1:])
	case "seed":
		return seedCmd(ctx, args[1:])
	case "help", "-h", "--help":
		Usage(ctx.Out)
		return nil
	default:
		Usage(ctx.Err)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}
