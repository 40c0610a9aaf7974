package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/leadloom-cli/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API (/analyze, /subscribe, /report, /health)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := activeConfig()
		if err != nil {
			return err
		}
		addr := c.ServerAddr
		if serveAddr != "" {
			addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, c)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		if st != nil {
			defer st.Close()
		} else {
			fmt.Fprintln(os.Stderr, "⚠ Warning: database_url not set; uploads and subscribers are not persisted")
		}

		srv := server.New(server.Config{
			Analyzer:       newAnalyzer(c),
			Store:          st,
			LeadOptions:    c.LeadOptions(),
			MaxUploadBytes: c.MaxUploadBytes(),
			AllowedOrigins: c.AllowedOrigins,
		})
		fmt.Printf("✓ Listening on %s\n", addr)
		return srv.Run(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server_addr)")
}
