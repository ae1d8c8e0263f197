// Copyright 2021-2024 hhorai. All rights reserved.
// Use of this source code is governed by a MIT license that can be found
// in the LICENSE file.

package commands

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hhorai/nr-pdcp/cmd/pdcpsim/simconfig"
	"github.com/hhorai/nr-pdcp/pdcp"
	pdcpmetrics "github.com/hhorai/nr-pdcp/pdcp/metrics"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Push a run of SDUs through a paired gNB/UE PDCP bearer",
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := simconfig.Load(cfgFile)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)

	var recorder pdcpmetrics.Recorder = pdcpmetrics.Noop{}
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		recorder = pdcpmetrics.NewPrometheusRecorder(reg)
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	key, err := cipherKey(cfg)
	if err != nil {
		return err
	}

	var ue *pdcp.Entity
	reorderer := &pduReorderer{every: cfg.ReorderEvery}

	gnb, err := pdcp.New(pdcp.Config{
		Type:               pdcp.UserPlane,
		IsGNB:              true,
		RBID:               cfg.RBID,
		SNSize:             pdcp.SNSize(cfg.SNSize),
		TReordering:        cfg.TReordering,
		CipheringAlgorithm: pdcp.CipherAlgorithm(cfg.CipheringAlgorithm),
		CipheringKey:       key,
		Logger:             logger.With("side", "gnb"),
		Metrics:            recorder,
		DeliverSDU:         func(*pdcp.Entity, []byte) {},
		DeliverPDU: func(_ *pdcp.Entity, buf []byte, sduID int) {
			reorderer.deliver(ue, buf, sduID)
		},
	})
	if err != nil {
		return fmt.Errorf("pdcpsim: building gNB entity: %w", err)
	}

	ue, err = pdcp.New(pdcp.Config{
		Type:               pdcp.UserPlane,
		IsGNB:              false,
		RBID:               cfg.RBID,
		SNSize:             pdcp.SNSize(cfg.SNSize),
		TReordering:        cfg.TReordering,
		CipheringAlgorithm: pdcp.CipherAlgorithm(cfg.CipheringAlgorithm),
		CipheringKey:       key,
		Logger:             logger.With("side", "ue"),
		Metrics:            recorder,
		DeliverSDU: func(_ *pdcp.Entity, buf []byte) {
			fmt.Fprintf(cmd.OutOrStdout(), "delivered: %q\n", buf)
		},
		DeliverPDU: func(*pdcp.Entity, []byte, int) {},
	})
	if err != nil {
		return fmt.Errorf("pdcpsim: building UE entity: %w", err)
	}

	for i := 0; i < cfg.SDUCount; i++ {
		gnb.RecvSDU([]byte(fmt.Sprintf("sdu-%d", i)), i)
	}
	reorderer.flush(ue)

	stats := ue.Stats()
	fmt.Fprintf(cmd.OutOrStdout(), "rx_deliv=%d rx_next=%d rx_size=%d\n", stats.RxDeliv, stats.RxNext, stats.RxSize)
	return nil
}

// pduReorderer holds back each PDU whose sduID is a multiple of every and
// delivers it right after the PDU that follows it, to exercise RX's
// out-of-order path. every <= 0 disables it.
type pduReorderer struct {
	every   int
	pending []byte
	holding bool
}

func (r *pduReorderer) deliver(ue *pdcp.Entity, buf []byte, sduID int) {
	if r.every > 0 && sduID%r.every == 0 && !r.holding {
		r.pending = append([]byte(nil), buf...)
		r.holding = true
		return
	}
	ue.RecvPDU(buf)
	if r.holding {
		ue.RecvPDU(r.pending)
		r.holding = false
	}
}

func (r *pduReorderer) flush(ue *pdcp.Entity) {
	if r.holding {
		ue.RecvPDU(r.pending)
		r.holding = false
	}
}

func cipherKey(cfg simconfig.Config) ([]byte, error) {
	if cfg.CipheringAlgorithm == 0 {
		return nil, nil
	}
	if cfg.CipheringKeyHex == "" {
		return nil, fmt.Errorf("pdcpsim: ciphering_key is required when ciphering_algorithm != 0")
	}
	key, err := hex.DecodeString(cfg.CipheringKeyHex)
	if err != nil {
		return nil, fmt.Errorf("pdcpsim: decoding ciphering_key: %w", err)
	}
	return key, nil
}

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info("pdcpsim: serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("pdcpsim: metrics server stopped", "err", err)
	}
}
