package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	api "github.com/rpupo63/builders-showcase-backend/api"
	"github.com/rpupo63/builders-showcase-backend/config"
	"github.com/rpupo63/builders-showcase-backend/database"
	"github.com/rpupo63/builders-showcase-backend/models"
	"github.com/rpupo63/builders-showcase-backend/services"
)

func main() {
	fmt.Println("Initializing app...")

	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	c := config.New()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := config.LoadSSM(startupCtx, c); err != nil {
		fmt.Printf("Error loading SSM parameters: %v\n", err)
		os.Exit(1)
	}

	if level, err := zerolog.ParseLevel(config.GetString(c, "LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	dbType := config.GetString(c, "DB_TYPE", "")
	fmt.Printf("DB_TYPE: %s\n", dbType)

	var connStr string
	switch dbType {
	case "supa":
		connStr = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
		fmt.Println("Connecting to Supabase database...")
	case "postgres":
		connStr = config.GetString(c, "DATABASE_URL", "")
		fmt.Println("Connecting to Postgres database...")
	default:
		fmt.Println("Unsupported DB_TYPE. Exiting...")
		os.Exit(1)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt: false,
		Logger:      newLogger,
	})
	if err != nil {
		fmt.Printf("Error connecting to database: %v\n", err)
		os.Exit(1)
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		fmt.Printf("Error testing database connection: %v\n", err)
		os.Exit(1)
	}

	if replicaDSNs := config.GetList(c, "DB_REPLICA_DSNS"); len(replicaDSNs) > 0 {
		replicas := make([]gorm.Dialector, 0, len(replicaDSNs))
		for _, dsn := range replicaDSNs {
			replicas = append(replicas, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		if err := database.UseReplicas(db, replicas); err != nil {
			fmt.Printf("Error registering read replicas: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Routing reads to %d replica(s)\n", len(replicas))
	}

	// If generating models, run generation and exit
	if config.GetBool(c, "GENERATE_MODELS", false) {
		fmt.Println("Generating models and query helpers...")
		models.GenerateModels(db)
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(c, "GENERATE_COLUMN_REPORT", false) {
		fmt.Println("Generating column mismatch report...")
		models.GenerateColumnMismatchReportStandalone(db)
		return
	}

	if config.GetBool(c, "AUTO_MIGRATE", true) {
		if err := models.Migrate(db); err != nil {
			fmt.Printf("Error migrating database: %v\n", err)
			os.Exit(1)
		}
	}

	identity, err := services.NewJWTIdentityProvider(c)
	if err != nil {
		fmt.Printf("Error configuring identity provider: %v\n", err)
		os.Exit(1)
	}

	blobs, err := services.NewS3BlobStore(startupCtx, c)
	if err != nil {
		fmt.Printf("Error configuring blob storage: %v\n", err)
		os.Exit(1)
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(database.New(db), identity, blobs, c)
	if err != nil {
		fmt.Printf("Error initializing server: %v\n", err)
		os.Exit(1)
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	fmt.Printf("Closing server: %v\n", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
