// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command spdydump decodes a SPDY/3 byte stream, read either from a file
// (offline replay of a captured stream) or from stdin, and prints the
// frame events it observes.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	spdy "github.com/go-spdy/spdyframe"
	"github.com/go-spdy/spdyframe/internal/transport"
)

var (
	maxChunkSize  uint32
	maxHeaderSize int
	metricsAddr   string
)

var rootCmd = &cobra.Command{
	Use:   "spdydump [file]",
	Short: "Decode a SPDY/3 frame stream and print the events it contains",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer log.Sync()

		if metricsAddr != "" {
			go func() {
				http.Handle("/metrics", promhttp.Handler())
				log.Warn("metrics listener stopped", zap.Error(http.ListenAndServe(metricsAddr, nil)))
			}()
		}

		in := os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open %s: %w", args[0], err)
			}
			defer f.Close()
			in = f
		}

		cfg := spdy.Config{
			Version:       spdy.Version,
			MaxChunkSize:  maxChunkSize,
			MaxHeaderSize: maxHeaderSize,
		}
		h, err := transport.New(in, cfg, log, printEvent)
		if err != nil {
			return fmt.Errorf("build harness: %w", err)
		}
		if err := h.Run(); err != nil {
			return nil // EOF or read error already logged by the harness
		}
		return nil
	},
}

func printEvent(event spdy.FrameEvent) {
	switch e := event.(type) {
	case *spdy.DataFrame:
		fmt.Printf("DATA stream=%d last=%v len=%d\n", e.StreamID, e.Last, len(e.Payload))
	case *spdy.SynStreamFrame:
		fmt.Printf("SYN_STREAM stream=%d assoc=%d priority=%d last=%v unidirectional=%v\n",
			e.StreamID, e.AssociatedToStreamID, e.Priority, e.Last, e.Unidirectional)
	case *spdy.SynReplyFrame:
		fmt.Printf("SYN_REPLY stream=%d last=%v\n", e.StreamID, e.Last)
	case *spdy.HeadersFrame:
		fmt.Printf("HEADERS stream=%d last=%v\n", e.StreamID, e.Last)
	case *spdy.RstStreamFrame:
		fmt.Printf("RST_STREAM stream=%d status=%d\n", e.StreamID, e.StatusCode)
	case *spdy.SettingsFrame:
		fmt.Printf("SETTINGS entries=%d clear=%v\n", len(e.Entries), e.ClearPreviouslyPersisted)
	case *spdy.PingFrame:
		fmt.Printf("PING id=%d\n", e.ID)
	case *spdy.GoAwayFrame:
		fmt.Printf("GOAWAY last_good_stream=%d status=%d\n", e.LastGoodStreamID, e.StatusCode)
	case *spdy.WindowUpdateFrame:
		fmt.Printf("WINDOW_UPDATE stream=%d delta=%d\n", e.StreamID, e.Delta)
	case *spdy.HeaderBlockChunk:
		fmt.Printf("  header block chunk: %d compressed bytes\n", len(e.Compressed))
	case *spdy.HeaderBlockEnd:
		fmt.Printf("  header block end invalid=%v truncated=%v headers=%v\n", e.Invalid, e.Truncated, e.Target.Headers())
	}
}

func init() {
	rootCmd.Flags().Uint32Var(&maxChunkSize, "max-chunk-size", 16*1024, "largest DATA frame payload chunk the decoder emits")
	rootCmd.Flags().IntVar(&maxHeaderSize, "max-header-size", 1<<20, "largest decompressed header block size, 0 for unbounded")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
