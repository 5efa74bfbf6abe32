package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saasha05/FlightBookingSystem/config"
	"github.com/saasha05/FlightBookingSystem/internal/cache"
	"github.com/saasha05/FlightBookingSystem/internal/engine"
	"github.com/saasha05/FlightBookingSystem/internal/kafka"
	"github.com/saasha05/FlightBookingSystem/internal/session"
	"github.com/saasha05/FlightBookingSystem/internal/txn"
	"go.uber.org/zap"
)

const usage = `Commands:
  create <username> <password> <initial amount>
  login <username> <password>
  search <origin city> <dest city> <direct> <day> <num itineraries>
  book <itinerary num>
  pay <reservation id>
  reservations
  cancel <reservation id>
  quit
`

func main() {
	resetTables := flag.Bool("reset", false, "clear users and reservations, then exit")
	flag.Parse()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.Redis.Addr != "" {
		searchCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Engine.SearchCacheTTLSeconds)*time.Second)
		defer searchCache.Close()
		opts = append(opts, engine.WithSearchCache(searchCache))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		opts = append(opts, engine.WithProducer(producer, cfg.Kafka.EventsTopic))
	}

	policy := txn.RetryPolicy{
		MaxAttempts: cfg.Engine.MaxAttempts,
		Backoff:     cfg.Engine.RetryBackoff(),
		MaxBackoff:  cfg.Engine.MaxRetryBackoff(),
	}
	eng := engine.New(pool, policy, cfg.Engine.CreateRetryBudget, opts...)

	if *resetTables {
		if err := eng.Reset(ctx); err != nil {
			logger.Fatal("reset tables", zap.Error(err))
		}
		fmt.Println("Tables cleared")
		return
	}

	sess, err := eng.NewSession(ctx)
	if err != nil {
		logger.Fatal("open session", zap.Error(err))
	}
	defer sess.Close()

	rl, err := readline.New("> ")
	if err != nil {
		logger.Fatal("init readline", zap.Error(err))
	}
	defer rl.Close()

	repl(ctx, eng, sess, rl, logger)
}

var errQuit = errors.New("quit")

func repl(ctx context.Context, eng *engine.Engine, sess *session.Session, rl *readline.Instance, logger *zap.Logger) {
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF || ctx.Err() != nil {
			return
		}
		args := tokenize(line)
		if len(args) == 0 {
			continue
		}

		out, opErr := dispatch(ctx, eng, sess, args)
		fmt.Print(out)
		if errors.Is(opErr, errQuit) {
			return
		}
		if opErr != nil {
			// A dangling transaction means the isolation contract is
			// broken; the session must not continue.
			logger.Fatal("session aborted", zap.Error(opErr))
		}
	}
}

func dispatch(ctx context.Context, eng *engine.Engine, sess *session.Session, args []string) (string, error) {
	switch args[0] {
	case "create":
		if len(args) != 4 {
			return usage, nil
		}
		amount, err := strconv.Atoi(args[3])
		if err != nil {
			return usage, nil
		}
		return eng.CreateCustomer(ctx, sess, args[1], args[2], amount)
	case "login":
		if len(args) != 3 {
			return usage, nil
		}
		return eng.Login(ctx, sess, args[1], args[2])
	case "search":
		if len(args) != 6 {
			return usage, nil
		}
		direct, err1 := strconv.Atoi(args[3])
		day, err2 := strconv.Atoi(args[4])
		count, err3 := strconv.Atoi(args[5])
		if err1 != nil || err2 != nil || err3 != nil {
			return usage, nil
		}
		return eng.Search(ctx, sess, args[1], args[2], direct == 1, day, count)
	case "book":
		if len(args) != 2 {
			return usage, nil
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return usage, nil
		}
		return eng.Book(ctx, sess, id)
	case "pay":
		if len(args) != 2 {
			return usage, nil
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return usage, nil
		}
		return eng.Pay(ctx, sess, id)
	case "reservations":
		return eng.ListReservations(ctx, sess)
	case "cancel":
		if len(args) != 2 {
			return usage, nil
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return usage, nil
		}
		return eng.Cancel(ctx, sess, id)
	case "quit", "exit":
		return "Goodbye\n", errQuit
	default:
		return usage, nil
	}
}

// tokenize splits a command line on spaces, keeping double-quoted
// segments together so multi-word city names work:
//
//	search "Seattle WA" "Boston MA" 1 14 10
func tokenize(line string) []string {
	var args []string
	var cur strings.Builder
	inQuotes := false
	flush := func() {
		if cur.Len() > 0 {
			args = append(args, cur.String())
			cur.Reset()
		}
	}
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
			if !inQuotes {
				args = append(args, cur.String())
				cur.Reset()
			}
		case r == ' ' && !inQuotes:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return args
}
