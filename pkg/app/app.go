// Package app はプラットフォームに応じたストレージを選び、各コンポーネントを組み立てます。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/shouni/newspaper-image-kit/pkg/adapters"
	"github.com/shouni/newspaper-image-kit/pkg/config"
	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"github.com/shouni/newspaper-image-kit/pkg/generator"
	"github.com/shouni/newspaper-image-kit/pkg/history"
	"github.com/shouni/newspaper-image-kit/pkg/settings"
	"github.com/shouni/newspaper-image-kit/pkg/usercenter"
)

const (
	boltFileName   = "storage.db"
	imageDirName   = "images"
	redisKeyPrefix = "newspaper:"
	redisPingLimit = 3 * time.Second
)

// ErrUserCenterDisabled はユーザーセンターのURLが設定されていない場合に返されます。
var ErrUserCenterDisabled = errors.New("ユーザーセンターが設定されていません")

// App は設定・生成・履歴をまとめたアプリケーションです。
type App struct {
	Settings   *settings.Store
	Generator  *generator.Client
	History    *history.Cache
	UserCenter *usercenter.Client // UserCenterURL が空の場合は nil

	closers []io.Closer
}

// backends は起動時に選択されたストレージ実装です。
type backends struct {
	kv      adapters.KeyValueStore
	files   adapters.FileStore
	closers []io.Closer
}

// New は cfg.Platform に従ってストレージを選択し、App を組み立てます。
func New(ctx context.Context, cfg config.Config) (*App, error) {
	b, err := openBackends(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ストレージの初期化に失敗しました: %w", err)
	}

	a, err := build(cfg, b)
	if err != nil {
		_ = closeAll(b.closers)
		return nil, err
	}
	slog.InfoContext(ctx, "アプリケーションを初期化しました", "platform", cfg.Platform, "model", cfg.Model)
	return a, nil
}

func build(cfg config.Config, b backends) (*App, error) {
	store := settings.NewStore(b.kv)
	restyClient := adapters.NewRestyClient(cfg.HTTPTimeout)

	core, err := initializeCore(cfg, restyClient)
	if err != nil {
		return nil, err
	}

	factory := generator.NewGenaiFactory(generator.EndpointConfig{
		BaseURL:    cfg.APIBaseURL,
		APIVersion: cfg.APIVersion,
	})
	client, err := generator.NewClient(store, factory, core, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("生成クライアントの初期化に失敗しました: %w", err)
	}

	var uc *usercenter.Client
	if cfg.UserCenterURL != "" {
		uc, err = usercenter.NewClient(restyClient, cfg.UserCenterURL, cfg.InviteCode)
		if err != nil {
			return nil, fmt.Errorf("ユーザーセンタークライアントの初期化に失敗しました: %w", err)
		}
	}

	return &App{
		Settings:   store,
		Generator:  client,
		History:    history.NewCache(b.kv, b.files),
		UserCenter: uc,
		closers:    b.closers,
	}, nil
}

// initializeCore は参照画像用のキャッシュ付き GeminiImageCore を作成します。
func initializeCore(cfg config.Config, restyClient *resty.Client) (*generator.GeminiImageCore, error) {
	imgCache := cache.New(cfg.ReferenceTTL, 2*cfg.ReferenceTTL)
	core, err := generator.NewGeminiImageCore(adapters.NewHTTPClient(restyClient), imgCache, cfg.ReferenceTTL)
	if err != nil {
		return nil, fmt.Errorf("GeminiImageCore の初期化に失敗しました: %w", err)
	}
	return core, nil
}

func openBackends(ctx context.Context, cfg config.Config) (backends, error) {
	switch cfg.Platform {
	case config.PlatformH5:
		return backends{kv: adapters.NewMemoryKV()}, nil

	case config.PlatformWeapp:
		kv, err := adapters.OpenBoltKV(filepath.Join(cfg.DataDir, boltFileName))
		if err != nil {
			return backends{}, err
		}
		return backends{
			kv:      kv,
			files:   adapters.NewDiskFileStore(filepath.Join(cfg.DataDir, imageDirName)),
			closers: []io.Closer{kv},
		}, nil

	case config.PlatformRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		pingCtx, cancel := context.WithTimeout(ctx, redisPingLimit)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return backends{}, fmt.Errorf("Redis (%s) に接続できません: %w", cfg.RedisAddr, err)
		}
		kv := adapters.NewRedisKV(rdb, redisKeyPrefix)
		return backends{kv: kv, closers: []io.Closer{kv}}, nil

	default:
		return backends{}, fmt.Errorf("%w: %q", config.ErrInvalidPlatform, cfg.Platform)
	}
}

// GenerateAndSave は画像を生成し、成功した場合は履歴に追加します。
// 生成のエラーは *domain.GenerationError です。
func (a *App) GenerateAndSave(ctx context.Context, theme string, opts *domain.GenerateOptions) (domain.HistoryImage, error) {
	imageRef, err := a.Generator.Generate(ctx, theme, opts)
	if err != nil {
		return domain.HistoryImage{}, err
	}
	img, err := a.History.Add(imageRef)
	if err != nil {
		return domain.HistoryImage{}, fmt.Errorf("履歴への追加に失敗しました: %w", err)
	}
	return img, nil
}

// CurrentOptions は保存済みの用紙設定からアスペクト比を決めた GenerateOptions を返します。
func (a *App) CurrentOptions() *domain.GenerateOptions {
	return &domain.GenerateOptions{AspectRatio: a.Settings.AspectRatio()}
}

// Login は電話番号で API キーを取得して設定に保存します。
func (a *App) Login(ctx context.Context, phone string) (string, error) {
	if a.UserCenter == nil {
		return "", ErrUserCenterDisabled
	}
	return a.UserCenter.Login(ctx, phone, a.Settings)
}

// Close は開いているストレージを閉じます。
func (a *App) Close() error {
	err := closeAll(a.closers)
	a.closers = nil
	return err
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
