package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"log"
	"os"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/talaria-id/talaria/adapters/accounts"
	"github.com/talaria-id/talaria/adapters/events"
	"github.com/talaria-id/talaria/adapters/store"
	"github.com/talaria-id/talaria/adapters/tokenizer"
	"github.com/talaria-id/talaria/internal/config"
	"github.com/talaria-id/talaria/internal/ecc"
	"github.com/talaria-id/talaria/service"
	"github.com/talaria-id/talaria/transport/http"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "talaria",
		Short:        "DID QR-code authentication service",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd)
		},
	}
	config.BindFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	// Issuer signing key (secp256k1, signs the app identity in scan requests)
	signKey := loadSigningKey(cfg.SigningKeyHex)

	// Session token key (P-256 for ES256 JWTs, rotated on restart)
	tokenKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return err
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}

	redisClient := redis.NewClient(opts)

	logger := watermill.NewStdLogger(false, false)
	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		logger,
	)
	if err != nil {
		log.Fatalf("Failed to create Redis publisher: %v", err)
	}

	db, err := accounts.OpenSQLite(cfg.DatabasePath)
	if err != nil {
		return err
	}

	directory, err := accounts.NewGormDirectory(db)
	if err != nil {
		return err
	}

	windows := service.Windows{
		Verify: cfg.VerifyWindow,
		Poll:   cfg.PollWindow,
		Purge:  cfg.PurgeWindow,
	}

	app := service.AppIdentity{
		ID:          cfg.AppID,
		DID:         cfg.AppDID,
		Name:        cfg.AppName,
		Description: cfg.AppDesc,
		CallbackURL: cfg.CallbackURL,
		RequestInfo: cfg.RequestInfo,
	}

	authService := service.NewAuthService(
		store.NewRedisStore(redisClient, 2*cfg.PurgeWindow),
		directory,
		events.NewWatermillPublisher(publisher),
		tokenizer.NewJWTTokenizer(tokenKey),
		signKey,
		app,
		windows,
	)

	sessions := http.NewSessionBridge(sessionSecret(cfg.SessionSecret))

	router := http.SetupRouter(authService, sessions)

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	return nil
}

func loadSigningKey(hexKey string) *ecdsa.PrivateKey {
	if hexKey == "" {
		log.Println("TALARIA_SIGNING_KEY not set, generating an ephemeral issuer key")
		key, err := ecc.GenerateKey()
		if err != nil {
			log.Fatalf("Failed to generate issuer key: %v", err)
		}
		return key
	}

	key, err := ecc.LoadPrivateKey(hexKey)
	if err != nil {
		log.Fatalf("Failed to parse issuer key: %v", err)
	}
	return key
}

func sessionSecret(secret string) []byte {
	if secret != "" {
		return []byte(secret)
	}

	log.Println("TALARIA_SESSION_SECRET not set, generating an ephemeral secret")
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("Failed to generate session secret: %v", err)
	}
	return buf
}
