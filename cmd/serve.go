package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/preview"
	"github.com/alantheprice/pagewright/pkg/prompts"
	"github.com/alantheprice/pagewright/pkg/ui"
	"github.com/alantheprice/pagewright/pkg/utils"
)

var (
	serveFile  string
	servePort  int
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Preview server with live selection and element updates",
	Long: `Serve renders the working document in a sandboxed frame and keeps a
websocket link to the page: element selection in edit mode flows back to the
session, targeted updates flow out to the live DOM, and document changes
re-render the frame. With --watch, saving the template file on disk triggers
a debounced re-render.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrInit(skipPrompt)
		if err != nil {
			return err
		}
		if servePort != 0 {
			cfg.PreviewPort = servePort
		}

		template := pickTemplate(serveFile)
		s, err := newSession(cfg, template, "")
		if err != nil {
			return err
		}
		defer s.Reset()

		server := preview.NewServer(s.Renderer(), s.Bus(),
			fmt.Sprintf("%s:%d", cfg.PreviewHost, cfg.PreviewPort))
		server.MessagesFunc = s.Messages

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			cancel()
		}()

		if serveWatch && template != "" {
			quiet := time.Duration(cfg.RenderDebounceMs) * time.Millisecond
			stop, err := preview.WatchFile(template, quiet, func(path string) {
				data, err := os.ReadFile(path)
				if err != nil {
					utils.GetLogger(true).Logf("failed to reload %s: %v", path, err)
					return
				}
				s.SetDocument(string(data), "watch")
			})
			if err != nil {
				return err
			}
			defer stop()
			ui.Out().Print(prompts.WatchEstablished(template) + "\n")
		}

		ui.Out().Print(prompts.PreviewListening(server.Addr()) + "\n")
		return server.Start(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveFile, "file", "f", "", "template file to preview")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config)")
	serveCmd.Flags().BoolVarP(&serveWatch, "watch", "w", false, "re-render when the template file changes")
}
