package app

import (
	"context"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/bwmarrin/snowflake"
	"github.com/openshelf/catalogd/config"
	"github.com/openshelf/catalogd/internal/domain"
	"github.com/openshelf/catalogd/internal/media"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

// Application owns the process-wide collaborators: configuration, the
// record store handle, the media client and the identifier generator.
type Application struct {
	appConfig  *config.AppConfig
	gormDB     *gorm.DB
	mediaStore media.Store
	idgen      *snowflake.Node
}

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

func (a *Application) Media() media.Store {
	return a.mediaStore
}

func (a *Application) IDGen() *snowflake.Node {
	return a.idgen
}

// OverrideMedia replaces the media store (used in tests).
func (a *Application) OverrideMedia(store media.Store) {
	a.mediaStore = store
}

// Init builds the logger, connects the record store and the media host.
// A record-store failure is fatal to the caller; a media-host failure is
// logged only.
func (a *Application) Init() error {
	cfg := a.appConfig

	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	a.initLogger()

	a.idgen, err = snowflake.NewNode(1)
	if err != nil {
		return errors.Wrap(err, "snowflake node init failed")
	}

	a.gormDB, err = openDatabase(cfg)
	if err != nil {
		return errors.Wrap(err, "database connection failed")
	}
	zap.S().Info("database connection successful")

	if err := a.MigrateDB(); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	a.mediaStore = media.NewClient(cfg.Media)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.mediaStore.Ping(pingCtx); err != nil {
		zap.L().Warn("media host unreachable at startup", zap.Error(err))
	} else {
		zap.S().Info("media host connection successful")
	}

	if cfg.System.SeedDemo {
		a.checkProducts()
	}
	return nil
}

func (a *Application) initLogger() {
	cfg := a.appConfig

	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller())
	} else {
		var err error
		logger, err = zapConfig.Build(zap.AddCaller())
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)
}

func (a *Application) MigrateDB() error {
	return a.gormDB.Migrator().AutoMigrate(domain.Tables...)
}

// InitDb drops and recreates the schema.
func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
		zap.S().Error(err)
	}
}

// Release releases application resources.
func (a *Application) Release() {
	if a.gormDB != nil {
		if sqlDB, err := a.gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = zap.L().Sync()
}
