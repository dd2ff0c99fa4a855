// Command pokerd runs the multi-table Texas Hold'em server: the engine's
// Table Transaction Gateway backed by Postgres (or an in-memory store for
// local runs), a gin REST/websocket front end, a Kafka hand-completed
// publisher, and a ClickHouse hand-history sink.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/IBM/sarama"
	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"poker-platform/internal/engine"
	"poker-platform/internal/events"
	"poker-platform/internal/storage"
	"poker-platform/internal/storage/postgres"
	"poker-platform/internal/transport"
	"poker-platform/pkg/poker"
	"poker-platform/pkg/rng"
)

var cli struct {
	Listen         string   `help:"Address to listen on." default:":3002"`
	PostgresDSN    string   `help:"Postgres connection string. Empty uses an in-memory store." env:"POKERD_POSTGRES_DSN"`
	KafkaBrokers   []string `help:"Kafka broker addresses for hand-completed events." env:"POKERD_KAFKA_BROKERS"`
	KafkaTopic     string   `help:"Kafka topic for hand-completed events." default:"poker.hand-completed"`
	ClickHouseHost string   `help:"ClickHouse host for hand-history analytics." env:"POKERD_CLICKHOUSE_HOST"`
	ClickHousePort int      `help:"ClickHouse port." default:"9000"`
	ClickHouseDB   string   `help:"ClickHouse database." default:"poker"`
	TickRate       time.Duration `help:"Accepted but not read: no deadline sweeper runs; an expired action deadline is applied when the next player action arrives." default:"1s"`
	TableCacheSize int      `help:"Number of table documents kept in the read-side LRU cache." default:"1024"`
}

func main() {
	kong.Parse(&cli)

	eng, cleanup, err := buildEngine(context.Background())
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	defer cleanup()

	server := transport.NewServer(eng)

	if len(cli.KafkaBrokers) > 0 {
		publisher, err := events.NewHandPublisher(events.PublisherConfig{
			Brokers:      cli.KafkaBrokers,
			Topic:        cli.KafkaTopic,
			MaxRetries:   5,
			RetryBackoff: 100 * time.Millisecond,
			RequiredAcks: sarama.WaitForLocal,
		})
		if err != nil {
			log.Printf("kafka publisher disabled: %v", err)
		} else {
			server.Publisher = publisher
			defer publisher.Close()
		}
	}

	if cli.ClickHouseHost != "" {
		ch, err := storage.NewClickHouseHandHistory(context.Background(), storage.ClickHouseConfig{
			Host:     cli.ClickHouseHost,
			Port:     cli.ClickHousePort,
			Database: cli.ClickHouseDB,
		})
		if err != nil {
			log.Printf("clickhouse hand history disabled: %v", err)
		} else {
			if err := ch.CreateTables(context.Background()); err != nil {
				log.Printf("clickhouse schema setup failed: %v", err)
			}
			server.HandHistory = ch
		}
	}

	router := gin.Default()
	server.Register(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer := &http.Server{Addr: cli.Listen, Handler: router}

	go func() {
		log.Printf("pokerd listening on %s", cli.Listen)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("shutting down pokerd")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}

// buildEngine wires the Table Transaction Gateway, ledger, and audited
// shuffler. Without a Postgres DSN it falls back to in-memory stores, so
// pokerd is runnable locally with zero external dependencies.
func buildEngine(ctx context.Context) (*engine.Engine, func(), error) {
	rngSystem, err := rng.NewSystem(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize rng: %w", err)
	}
	shuffler := &poker.Shuffler{Source: rngSystem}

	if cli.PostgresDSN == "" {
		log.Println("no postgres dsn set, using in-memory stores")
		gateway := engine.NewGateway(engine.NewMemStore())
		eng := engine.NewEngineWithShuffler(gateway, engine.NewMemLedgerStore(), shuffler)
		return eng, func() {}, nil
	}

	db, err := sql.Open("postgres", cli.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("ping postgres: %w", err)
	}

	tableStore := postgres.NewTableStore(db)
	if err := tableStore.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure table schema: %w", err)
	}
	cachedStore, err := postgres.NewCachedTableStore(tableStore, cli.TableCacheSize)
	if err != nil {
		return nil, nil, fmt.Errorf("build table cache: %w", err)
	}

	ledgerStore := postgres.NewLedgerStore(db)
	if err := ledgerStore.EnsureSchema(ctx); err != nil {
		return nil, nil, fmt.Errorf("ensure ledger schema: %w", err)
	}

	gateway := engine.NewGateway(cachedStore)
	eng := engine.NewEngineWithShuffler(gateway, ledgerStore, shuffler)
	return eng, func() { db.Close() }, nil
}
