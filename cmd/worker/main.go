// Package main (in worker-subfolder) runs the 3D job journal: it reads job events from Kafka and reports unresolved tasks
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/worker"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/config"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting worker...", err)
	}

	zlog.InitConsole()
	if err := zlog.SetLevel("info"); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	broker := appConfig.GetString("KAFKA_BROKER")
	if broker == "" {
		log.Fatalln("KAFKA_BROKER is empty, nothing to consume. Exiting worker...")
	}
	// ждем пока кафка раздуплится
	if !kafka.WaitKafkaReady(ctx, broker, 20, 5*time.Second) {
		log.Fatalln("Kafka is unreachable. Exiting worker...")
	}

	topic := appConfig.GetString("KAFKA_TOPIC")
	if topic == "" {
		topic = "model3d-jobs"
	}
	groupID := appConfig.GetString("KAFKA_GROUPID")
	if groupID == "" {
		groupID = "model3d-journal"
	}
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)

	// подключиться к кафке как читатель
	queue := make(chan kafkago.Message)
	retryStrategy := retry.Strategy{
		Attempts: 5,
		Delay:    2 * time.Second,
		Backoff:  1.5,
	}
	cons := wbfkafka.NewConsumer([]string{broker}, topic, groupID)
	cons.StartConsuming(ctx, queue, retryStrategy)

	journal := worker.NewWorkerInstance(queue, cons)
	go journal.StartWorker(ctx)

	<-ctx.Done()

	for _, ev := range journal.Unresolved() {
		log.Printf("Unresolved 3D task %s: last event %q, state %s, attempts %d", ev.TaskID, ev.Type, ev.State, ev.Attempts)
	}
	shutdown(cons)
	log.Println("Exiting worker...")
}

func shutdown(cons *wbfkafka.Consumer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := cons.Close(); err != nil {
		log.Println("Failed to close Kafka-reader:", err)
		return
	}
	log.Println("Kafka-consumer connection closed.")
}
