package app

import (
	"net/http"

	"gorm.io/gorm"

	"homecash/internal/auth"
	"homecash/internal/config"
	"homecash/internal/db"
	creditcarddomain "homecash/internal/domain/creditcard"
	expensedomain "homecash/internal/domain/expense"
	housedomain "homecash/internal/domain/house"
	invoicedomain "homecash/internal/domain/invoice"
	userdomain "homecash/internal/domain/user"
	creditcardrepo "homecash/internal/repository/postgres/creditcard"
	expenserepo "homecash/internal/repository/postgres/expense"
	houserepo "homecash/internal/repository/postgres/house"
	invoicerepo "homecash/internal/repository/postgres/invoice"
	userrepo "homecash/internal/repository/postgres/user"
	"homecash/internal/transport/httpserver"
	"homecash/internal/transport/httpserver/handler"
	"homecash/pkg/logger"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	users := userdomain.NewService(userrepo.NewPostgres(dbConn))
	houses := housedomain.NewService(houserepo.NewPostgres(dbConn), users)
	creditCards := creditcarddomain.NewService(creditcardrepo.NewPostgres(dbConn), houses, users)
	expenses := expensedomain.NewService(expenserepo.NewPostgres(dbConn), houses, creditCards)
	invoices := invoicedomain.NewService(invoicerepo.NewPostgres(dbConn), creditCards)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authenticator := auth.NewAuthenticator(users)

	log.Info("app: initializing router")
	handlers := handler.New(houses, expenses, creditCards, invoices, authenticator, tokens, log)
	router := httpserver.NewRouter(handlers, tokens, cfg.AllowedOrigins)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
