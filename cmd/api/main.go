// Package main (in api-subfolder) provides launch of the image processing proxy
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/mwlogger"
	"github.com/UnendingLoop/ImageLab/internal/provider/claid"
	"github.com/UnendingLoop/ImageLab/internal/provider/cloudinary"
	"github.com/UnendingLoop/ImageLab/internal/provider/meshy"
	"github.com/UnendingLoop/ImageLab/internal/provider/removebg"
	"github.com/UnendingLoop/ImageLab/internal/provider/serpapi"
	"github.com/UnendingLoop/ImageLab/internal/provider/vision"
	"github.com/UnendingLoop/ImageLab/internal/service"
	"github.com/UnendingLoop/ImageLab/internal/storage"
	"github.com/UnendingLoop/ImageLab/internal/transport"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/ginext"
	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"
)

func main() {
	// инициализировать конфиг/ считать энвы
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles("./.env"); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}

	// стартуем логгер
	zlog.InitConsole()
	level := appConfig.GetString("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	if err := zlog.SetLevel(level); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := buildVendors(appConfig)

	// публичные URL для base64-картинок
	deps.Relay = buildRelay(ctx, appConfig)

	// события 3D-задач в кафку, если брокер задан
	var pub *wbfkafka.Producer
	if broker := appConfig.GetString("KAFKA_BROKER"); broker != "" {
		topic := appConfig.GetString("KAFKA_TOPIC")
		if topic == "" {
			topic = "model3d-jobs"
		}
		if kafka.WaitKafkaReady(ctx, broker, 10, 5*time.Second) {
			kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
			pub = wbfkafka.NewProducer([]string{broker}, topic)
			deps.Events = kafka.NewEventPublisher(pub)
		} else {
			log.Println("Kafka is unreachable, job events disabled")
		}
	}

	// создаем экземпляр сервиса
	var svc ImageAPIService = service.NewImageService(deps)
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewImageHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/api/remove-bg", handlers.RemoveBackground)
	engine.POST("/api/meshy", handlers.Reconstruct3D)        // создание + опрос до результата
	engine.GET("/api/meshy/:taskId", handlers.Model3DStatus) // разовая проверка
	engine.POST("/api/google-vision", handlers.DetectLabels)
	engine.POST("/api/google-cloud", handlers.CloudOperation)
	engine.POST("/api/claid", handlers.Enhance)
	engine.POST("/api/cloudinary-validate", handlers.ValidateCDN)
	engine.POST("/api/product-recognition", handlers.SearchProducts)
	engine.GET("/api/product-recognition", handlers.ProductSearchInfo)

	port := appConfig.GetString("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: mwlogger.NewMWLogger(engine),
	}

	// Server launch
	go func() {
		log.Printf("Server running on http://localhost%s\n", srv.Addr)
		err := srv.ListenAndServe()
		if err != nil {
			switch {
			case errors.Is(err, http.ErrServerClosed):
				log.Println("Server gracefully stopping...")
			default:
				log.Printf("Server stopped: %v", err)
				stop()
			}
		}
	}()

	// ждем отмены контекста для запуска грейсфул закрытия сервера и кафки
	<-ctx.Done()

	shutdown(srv, pub)
	log.Println("Exiting app...")
}

// buildVendors - клиент создается только при наличии ключа, иначе поле остается nil
func buildVendors(cfg *config.Config) service.Deps {
	var deps service.Deps

	if key := cfg.GetString("REMOVE_BG_API_KEY"); key != "" {
		deps.BackgroundRemover = removebg.New(key)
	}
	if key := cfg.GetString("MESHY_API_KEY"); key != "" {
		deps.ModelBuilder = meshy.New(key)
	}
	if key := cfg.GetString("GOOGLE_CLOUD_API_KEY"); key != "" {
		deps.Vision = vision.New(key)
		deps.ProjectID = cfg.GetString("GOOGLE_CLOUD_PROJECT_ID")
	}
	if key := cfg.GetString("CLAID_API_KEY"); key != "" {
		deps.Editor = claid.New(key)
	}
	if key := cfg.GetString("SERPAPI_KEY"); key != "" {
		deps.Search = serpapi.New(key)
	}

	cdn := newCDN(cfg)
	if cdn.CanAdmin() {
		deps.CDN = cdn
	}
	return deps
}

func newCDN(cfg *config.Config) *cloudinary.Client {
	return cloudinary.New(cloudinary.Credentials{
		CloudName:    cfg.GetString("CLOUDINARY_CLOUD_NAME"),
		APIKey:       cfg.GetString("CLOUDINARY_API_KEY"),
		APISecret:    cfg.GetString("CLOUDINARY_API_SECRET"),
		UploadPreset: cfg.GetString("CLOUDINARY_UPLOAD_PRESET"),
	})
}

// buildRelay - minio по ASSET_RELAY=minio, иначе неподписанная загрузка в CDN
func buildRelay(ctx context.Context, cfg *config.Config) service.AssetRelay {
	if strings.EqualFold(cfg.GetString("ASSET_RELAY"), "minio") {
		strg := storage.NewImgStorage(ctx, cfg, 5, 5*time.Second)
		if strg == nil {
			return nil
		}
		return storage.NewBucketRelay(strg)
	}

	cdn := newCDN(cfg)
	if !cdn.CanUploadUnsigned() {
		log.Println("Cloudinary upload preset is not set, base64 relay disabled")
		return nil
	}
	return storage.NewCDNRelay(cdn)
}

func shutdown(srv *http.Server, pub *wbfkafka.Producer) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Failed to shutdown HTTP-server correctly:", err)
	}

	// Closing Kafka connection:
	if pub == nil {
		return
	}
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
		return
	}
	log.Println("Kafka-producer connection closed.")
}
