package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"storefront/config"
	"storefront/payment"
	"storefront/routers"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "啟動HTTP伺服器",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := config.SetupDatabase(cfg)
	if err != nil {
		return err
	}
	defer func() {
		dbInstance, _ := db.DB()
		_ = dbInstance.Close()
	}()

	if err := config.Migrate(db); err != nil {
		return err
	}

	rdb, err := config.SetupRedisConnection(ctx, cfg)
	if err != nil {
		return err
	}
	defer rdb.Close()

	gateway := payment.NewBraintree(payment.Credentials{
		Environment:       cfg.Braintree.Environment,
		MerchantAccountID: cfg.Braintree.MerchantAccountID,
		PublicKey:         cfg.Braintree.PublicKey,
		PrivateKey:        cfg.Braintree.PrivateKey,
		Timeout:           cfg.Braintree.Timeout,
	})

	router := routers.SetupRouters(routers.NewDependencies(cfg, db, rdb, gateway))
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("伺服器啟動於%s\n", cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	//等待處理中的請求完成
	log.Println("伺服器關閉中")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
