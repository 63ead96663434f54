// Package main (in api-subfolder) provides launch of the catalog API
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"imagecatalog/internal/kafka"
	"imagecatalog/internal/mwlogger"
	"imagecatalog/internal/repository"
	"imagecatalog/internal/service"
	"imagecatalog/internal/storage"
	"imagecatalog/internal/transport"

	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"
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
	err := zlog.SetLevel("info")
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	// готовим заранее слушатель прерываний - контекст для всего приложения
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// подключитсья к базе
	dbConn := repository.ConnectWithRetries(appConfig, 5, 10*time.Second)
	// накатываем миграцию
	repository.MigrateWithRetries(dbConn.Master, "./migrations", 10, 15*time.Second)

	// подключиться к хранилищу
	strg := storage.NewBlobStorage(appConfig, 10*time.Second)
	// создаем экземпляр репо
	repo := repository.NewPostgresCatalogRepo(dbConn)

	// ждем пока кафка раздуплится
	broker := appConfig.GetString("KAFKA_BROKER")
	kafka.WaitKafkaReady(broker)
	// подключиться к кафке как продюсер
	topic := appConfig.GetString("KAFKA_TOPIC")
	kafka.InitKafkaTopics(ctx, broker, 10*time.Second, topic)
	pub := wbfkafka.NewProducer([]string{broker}, topic)

	// создаем экземпляр сервиса
	var svc CatalogAPIService = service.NewCatalogService(repo, pub, strg,
		appConfig.GetString("SOURCE_KEY"),
		appConfig.GetString("RESULT_KEY"))
	// cоздаем экземпляр хендлера HTTP
	handlers := transport.NewCatalogHandler(svc)
	// сетапим сервер
	mode := appConfig.GetString("GIN_MODE")
	engine := ginext.New(mode)

	engine.GET("/ping", handlers.SimplePinger)
	engine.POST("/images/upload", handlers.Upload)          // загрузка оригинала
	engine.POST("/images/process", handlers.Process)        // постановка обработки в очередь
	engine.POST("/processed/status", handlers.UpdateStatus) // колбек от обработчиков
	engine.GET("/images", handlers.List)                    // список с фильтром и пагинацией
	engine.GET("/images/gallery", handlers.Gallery)         // картинки с готовыми вариантами
	engine.GET("/images/download", handlers.Download)       // оригинал или вариант как base64
	engine.GET("/images/:id", handlers.Get)                 // одна картинка со всеми вариантами
	engine.DELETE("/images/:id", handlers.Delete)           // удаление с зависимыми записями

	srv := &http.Server{
		Addr:    ":" + appConfig.GetString("APP_PORT"),
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

	// запускаем фоновый цикл переотправки подвисших задач
	go requeueLoop(ctx, svc)

	// ждем отмены контекста для запуска грейсфул закрытия соединений бд и кафки
	<-ctx.Done()

	shutdown(pub, dbConn)
	log.Println("Exiting app...")
}

func requeueLoop(ctx context.Context, svc CatalogAPIService) {
	defer func() {
		if r := recover(); r != nil {
			log.Println("Requeue loop crashed:", r)
		}
	}()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.RequeueStale(context.Background(), 20)
		}
	}
}

func shutdown(pub *wbfkafka.Producer, dbConn *dbpg.DB) {
	log.Println("Interrupt received!!! Starting shutdown sequence...")

	// Closing Kafka connection:
	if err := pub.Close(); err != nil {
		log.Println("Failed to close Kafka-producer:", err)
	}
	log.Println("Kafka-producer connection closed.")

	// Closing DB connection
	if err := dbConn.Master.Close(); err != nil {
		log.Println("Failed to close DB-conn correctly:", err)
		return
	}
	log.Println("DBconn closed")
}
