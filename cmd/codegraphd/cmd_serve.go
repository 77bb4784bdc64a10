package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"codegraph/internal/agent"
	"codegraph/internal/logging"
	"codegraph/internal/mcpserver"
)

var (
	transport           string
	contextWindowTokens int
	sessionIdleTimeout  time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the MCP tool surface over STDIO or HTTP+SSE",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&transport, "transport", "stdio", "stdio | http")
	serveCmd.Flags().IntVar(&contextWindowTokens, "context-window", 128_000, "driving LLM's context window, used to pick a tier (§4.6)")
	serveCmd.Flags().DurationVar(&sessionIdleTimeout, "session-idle-timeout", 30*time.Minute, "HTTP transport: close sessions idle longer than this")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDependencies(ctx)
	if err != nil {
		return err
	}
	defer d.Close()

	progress := func(ev agent.ProgressEvent) {
		logging.AgentDebug("step %d/%d", ev.Step, ev.StepBudget)
	}
	if err := agent.RegisterEntrypoints(d.registry, d.agent, contextWindowTokens, progress); err != nil {
		return err
	}

	handler := mcpserver.NewHandler(d.registry)

	switch transport {
	case "stdio":
		server := mcpserver.NewStdioServer(handler, os.Stdin, os.Stdout)
		return server.Serve(ctx)
	case "http":
		return serveHTTP(ctx, handler, d)
	default:
		return fmt.Errorf("unknown --transport %q (want stdio or http)", transport)
	}
}

func serveHTTP(ctx context.Context, handler *mcpserver.Handler, d *deps) error {
	sessions := mcpserver.NewSessionManager(sessionIdleTimeout)
	httpServer := mcpserver.NewHTTPServer(handler, sessions)
	handler.Cancel = func(requestID, reason string) {
		logging.MCPDebug("cancel requested for %s: %s", requestID, reason)
	}

	addr := fmt.Sprintf("%s:%d", d.cfg.HTTP.Host, d.cfg.HTTP.Port)
	srv := &http.Server{Addr: addr, Handler: httpServer.Routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logging.MCPInfo("codegraphd listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
