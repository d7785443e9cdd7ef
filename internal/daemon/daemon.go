package daemon

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/simpledeal-network/simpledeal/internal/api"
	"github.com/simpledeal-network/simpledeal/internal/domain"
	"github.com/simpledeal-network/simpledeal/internal/hashtag"
	"github.com/simpledeal-network/simpledeal/internal/infra/observability"
	"github.com/simpledeal-network/simpledeal/internal/infra/reputation"
	"github.com/simpledeal-network/simpledeal/internal/infra/sqlite"
	"github.com/simpledeal-network/simpledeal/internal/infra/token"
)

// Daemon is one assembled node: the local value ledger, the escrow
// contract, its durable shadow and the HTTP API.
type Daemon struct {
	cfg    Config
	log    zerolog.Logger
	db     *sqlite.DB
	server *http.Server
}

// New assembles a daemon from configuration.
func New(cfg Config, log zerolog.Logger) (*Daemon, error) {
	db, err := sqlite.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}

	ledger := token.NewLedger(domain.Address(cfg.Ledger.Address))
	for account, balance := range cfg.Ledger.Seed {
		amount, err := domain.ParseValue(balance)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("seed balance for %s: %w", account, err)
		}
		ledger.Mint(domain.Address(account), amount)
	}

	fee, err := domain.ParseValue(cfg.Hashtag.Fee)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("hashtag fee: %w", err)
	}

	tracker := reputation.NewTracker()
	tracker.SetStore(db)
	if err := tracker.Restore(); err != nil {
		db.Close()
		return nil, fmt.Errorf("restore reputation: %w", err)
	}

	contract := domain.Address(cfg.Hashtag.Address)
	tag := hashtag.New(hashtag.Config{
		Name:          cfg.Hashtag.Name,
		Owner:         domain.Address(cfg.Hashtag.Owner),
		PayoutAddress: domain.Address(cfg.Hashtag.PayoutAddress),
		HashtagFee:    fee,
		MetadataHash:  domain.Hash(cfg.Hashtag.MetadataHash),
		LedgerAddress: ledger.Address(),
	}, ledger.Bind(contract), tracker)

	tag.SetStore(db)
	tag.SetHeightSource(ledger.Height)
	if err := tag.Restore(); err != nil {
		db.Close()
		return nil, fmt.Errorf("restore items: %w", err)
	}

	sinks := domain.MultiSink{sqlite.NewEventLog(db, log)}
	if cfg.Metrics.Enabled {
		sinks = append(sinks, observability.NewMetrics(prometheus.DefaultRegisterer))
	}
	tag.SetEventSink(sinks)

	ledger.RegisterReceiver(contract, tag)

	srv := api.NewServer(tag, log)
	srv.SetLedger(ledger, contract)
	srv.SetEventDB(db)
	if cfg.Metrics.Enabled {
		srv.EnableMetrics()
	}

	return &Daemon{
		cfg: cfg,
		log: log,
		db:  db,
		server: &http.Server{
			Addr:              cfg.API.Addr(),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Run serves the API until the context is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		d.log.Info().Str("addr", d.cfg.API.Addr()).Msg("listening")
		errc <- d.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := d.server.Shutdown(shutdownCtx)
		d.db.Close()
		return err
	case err := <-errc:
		d.db.Close()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
