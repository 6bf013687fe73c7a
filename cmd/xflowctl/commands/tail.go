package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/application/binding"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/entity"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/realtime"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/session"
)

type tailOptions struct {
	URL                 string
	Token               string
	Types               []string
	CounterpartyID      *int64
	CounterpartyAddress string
}

// activator is what tail needs from a binding
type activator interface {
	ActivateContext(ctx context.Context)
}

// tail: stream matching events as JSON lines until interrupted.
func tailCmd() *cobra.Command {
	var opts tailOptions

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print realtime events as JSON lines",
		Long: "Opens the realtime connection with the given token and prints every matching event.\n" +
			"Use --type for app-wide events or --counterparty-id/--counterparty-address for one counterparty.",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.URL = wsURL
			opts.Token = token

			id, err := counterpartyIDFromFlags(cmd)
			if err != nil {
				return err
			}
			opts.CounterpartyID = id

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runTail(ctx, opts, cmd.OutOrStdout(), log)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Types, "type", nil, "event types to include (repeatable)")
	cmd.Flags().Int64("counterparty-id", 0, "only events for this counterparty id")
	cmd.Flags().StringVar(&opts.CounterpartyAddress, "counterparty-address", "", "only events for this counterparty address")
	return cmd
}

func runTail(ctx context.Context, opts tailOptions, out io.Writer, log *logger.Logger) error {
	if opts.Token == "" {
		return fmt.Errorf("--token required")
	}

	cfg := config.DefaultRealtimeConfig(opts.URL)
	if err := cfg.Validate(); err != nil {
		return err
	}

	types, err := parseTypes(opts.Types)
	if err != nil {
		return err
	}
	scoped := opts.CounterpartyID != nil || opts.CounterpartyAddress != ""
	if scoped && len(types) > 0 {
		return fmt.Errorf("--type cannot be combined with --counterparty-id or --counterparty-address")
	}

	registry := realtime.NewRegistry(log)
	router := realtime.NewRouter(registry, log)
	manager := realtime.NewConnectionManager(&cfg, realtime.NewGorillaDialer(&cfg), session.NewStaticProvider(opts.Token, 0), router, log)
	defer manager.Disconnect()

	printer := &jsonLinePrinter{out: out}

	var b activator
	if scoped {
		var address *string
		if opts.CounterpartyAddress != "" {
			address = &opts.CounterpartyAddress
		}
		b = binding.NewScoped(manager, registry, printer.print, log, opts.CounterpartyID, address)
	} else {
		b = binding.NewAppWide(manager, registry, printer.print, log, types...)
	}

	b.ActivateContext(ctx)
	<-ctx.Done()
	return printer.err()
}

// counterpartyIDFromFlags returns nil unless --counterparty-id was given, so that
// id 0 can still be selected.
func counterpartyIDFromFlags(cmd *cobra.Command) (*int64, error) {
	if !cmd.Flags().Changed("counterparty-id") {
		return nil, nil
	}
	id, err := cmd.Flags().GetInt64("counterparty-id")
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseTypes(names []string) ([]entity.EventType, error) {
	types := make([]entity.EventType, 0, len(names))
	for _, name := range names {
		t := entity.EventType(name)
		if !t.IsKnown() {
			return nil, fmt.Errorf("unknown event type %q", name)
		}
		types = append(types, t)
	}
	return types, nil
}

type jsonLinePrinter struct {
	mu       sync.Mutex
	out      io.Writer
	writeErr error
}

func (p *jsonLinePrinter) print(event entity.WebSocketEvent) {
	line, err := json.Marshal(event)
	if err != nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, err := fmt.Fprintln(p.out, string(line)); err != nil && p.writeErr == nil {
		p.writeErr = err
	}
}

func (p *jsonLinePrinter) err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writeErr
}
