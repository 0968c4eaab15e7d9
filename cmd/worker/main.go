package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/plotline/backend/internal/queue"
	"github.com/OFFIS-RIT/plotline/backend/internal/storage"
	"github.com/OFFIS-RIT/plotline/backend/internal/timing"
	"github.com/OFFIS-RIT/plotline/backend/internal/util"
	"github.com/OFFIS-RIT/plotline/backend/pkg/leaselock"
	"github.com/OFFIS-RIT/plotline/backend/pkg/loader"
	s3loader "github.com/OFFIS-RIT/plotline/backend/pkg/loader/s3"
	"github.com/OFFIS-RIT/plotline/backend/pkg/logger"
	storepgx "github.com/OFFIS-RIT/plotline/backend/pkg/store/pgx"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/sync/errgroup"
)

func main() {
	util.LoadEnv()
	util.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Init s3 client
	bucket := util.GetEnv("AWS_BUCKET")
	if bucket == "" {
		logger.Fatal("[Worker] AWS_BUCKET is not set")
	}
	s3Client, err := storage.NewS3Client(ctx)
	if err != nil {
		logger.Fatal("[Worker] Failed to create S3 client", "err", err)
	}

	graphClient, err := util.NewGraphClient()
	if err != nil {
		logger.Fatal("[Worker] Failed to create graph client", "err", err)
	}

	// Init pgx client
	pgConn, err := util.ConnectDatabase(ctx)
	if err != nil {
		logger.Fatal("[Worker] Unable to connect to database", "err", err)
	}
	defer pgConn.Close()

	processor := &queue.Processor{
		Graph: graphClient,
		Store: storepgx.NewAnalysisDBStorage(pgConn),
		NewLoader: func() loader.NovelFileLoader {
			return s3loader.NewS3NovelFileLoaderWithClient(bucket, s3Client)
		},
		Locks:   leaselock.New(pgConn),
		Timings: timing.New(pgConn),
	}

	// Init rabbitmq
	conn, err := queue.Dial(ctx)
	if err != nil {
		logger.Fatal("[Worker] Failed to connect to queue", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("[Worker] Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.AnalyzeQueue}); err != nil {
		logger.Fatal("[Worker] Failed to setup queues", "err", err)
	}

	concurrency := max(util.GetEnvInt("WORKER_CONCURRENCY", 1), 1)
	if err := ch.Qos(concurrency, 0, false); err != nil {
		logger.Fatal("[Worker] Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.AnalyzeQueue,
		queue.AnalyzeQueue+"_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("[Worker] Failed to start consuming", "queue", queue.AnalyzeQueue, "err", err)
	}

	logger.Info("[Worker] Listening for messages", "queue", queue.AnalyzeQueue, "concurrency", concurrency)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range concurrency {
		g.Go(func() error {
			consume(gCtx, i, ch, processor, msgs)
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("[Worker] Shutdown signal received, exiting...")
}

func consume(ctx context.Context, worker int, ch *amqp.Channel, processor *queue.Processor, msgs <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("[Worker] Stopping consumer", "worker", worker)
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("[Worker] Message channel closed", "worker", worker)
				return
			}

			start := time.Now()
			logger.Info("[Worker] Received message", "worker", worker, "queue", queue.AnalyzeQueue)

			if err := processor.ProcessAnalyzeMessage(ctx, msg.Body); err != nil {
				logger.Error("[Worker] Error processing message", "worker", worker, "err", err)
				queue.HandleProcessingError(ctx, ch, msg, queue.AnalyzeQueue, err)
				continue
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("[Worker] Failed to ack message", "err", err)
			}
			logger.Info("[Worker] Message processed", "worker", worker, "duration", timing.Format(time.Since(start)))
		}
	}
}
