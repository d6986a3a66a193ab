package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/brandonestevez/walter/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP server exposing the catalog and describe",
	Long: `Start an HTTP server that wraps the local catalog and the description
pipeline. Remote clients can browse learned datasets and describe files the
server can read, without direct database access.

The server provides a RESTful JSON API at /api/v1/ with endpoints for
datasets and on-demand description. A health check is available at
/api/v1/health.`,
	Example: `  # Start server on default port
  walter serve

  # Start on a custom address
  walter serve --addr :9090

  # Start with a specific catalog
  walter serve --catalog /data/walter/catalog.db --addr localhost:7327`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openCatalog()
		if err != nil {
			return err
		}
		defer s.Close()

		srv := server.New(s)

		// Listen first so we can report the actual address.
		ln, err := net.Listen("tcp", serveAddr)
		if err != nil {
			return fmt.Errorf("listen %s: %w", serveAddr, err)
		}

		fmt.Fprintf(os.Stderr, "walter serve listening on %s\n", ln.Addr())

		// Graceful shutdown on SIGINT/SIGTERM.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Serve(ln)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "shutting down...")
			return srv.Shutdown(context.Background())
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":7327", "address to listen on (host:port)")
	rootCmd.AddCommand(serveCmd)
}
