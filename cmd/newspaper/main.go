package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/shouni/newspaper-image-kit/pkg/app"
	"github.com/shouni/newspaper-image-kit/pkg/config"
	"github.com/shouni/newspaper-image-kit/pkg/domain"
	"github.com/shouni/newspaper-image-kit/pkg/generator"
	"github.com/shouni/newspaper-image-kit/pkg/imgutil"
	"github.com/shouni/newspaper-image-kit/pkg/prompt"
	"github.com/shouni/newspaper-image-kit/pkg/settings"
	"github.com/shouni/newspaper-image-kit/pkg/usercenter"
	"github.com/spf13/cast"
)

type options struct {
	theme     string
	baseImage string
	refURL    string
	out       string
	apiKey    string
	clearKey  bool
	login     string
	style     string
	signature string
	paper     int
	landscape string
	list      bool
	remove    string
	clear     bool
	show      bool
}

func main() {
	var opts options
	flag.StringVar(&opts.theme, "theme", "", "手抄报のテーマ (最大200文字)")
	flag.StringVar(&opts.baseImage, "base", "", "修正元にする画像ファイルのパス")
	flag.StringVar(&opts.refURL, "ref", "", "参照画像のURL")
	flag.StringVar(&opts.out, "out", "", "生成画像の保存先ファイル")
	flag.StringVar(&opts.apiKey, "set-key", "", "API キーを保存する")
	flag.BoolVar(&opts.clearKey, "clear-key", false, "保存済みの API キーを消去する")
	flag.StringVar(&opts.login, "login", "", "電話番号でユーザー登録して API キーを取得する")
	flag.StringVar(&opts.style, "style", "", "画風 (handwritten, wireframe, blackboard, anime, custom)")
	flag.StringVar(&opts.signature, "signature", "", "右下に描く署名")
	flag.IntVar(&opts.paper, "paper", -1, "用紙プリセットの番号 (0: A4, 1: A3, 2: B5, 3: 8K, 4: Square, 5: Poster)")
	flag.StringVar(&opts.landscape, "landscape", "", "横向きにするか (true/false)")
	flag.BoolVar(&opts.list, "list", false, "履歴を表示する")
	flag.StringVar(&opts.remove, "remove", "", "指定したIDの履歴を削除する")
	flag.BoolVar(&opts.clear, "clear", false, "履歴をすべて削除する")
	flag.BoolVar(&opts.show, "show", false, "現在の設定を表示する")
	flag.Parse()

	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			slog.Warn("ストレージのクローズに失敗しました", "error", err)
		}
	}()

	if err := applySettings(a.Settings, opts); err != nil {
		return err
	}

	if opts.login != "" {
		key, err := a.Login(ctx, opts.login)
		if errors.Is(err, usercenter.ErrRegisteredElsewhere) {
			return fmt.Errorf("%w (-set-key で入力してください)", err)
		}
		if err != nil {
			return err
		}
		fmt.Printf("API Key: %s\n", settings.MaskAPIKey(key))
	}

	switch {
	case opts.show:
		printSettings(a.Settings.Snapshot())
	case opts.list:
		for _, img := range a.History.List() {
			fmt.Printf("%s\t%s\t%s\n", img.ID, img.CreatedAt.Format("2006-01-02 15:04:05"), summarize(img.URL))
		}
	case opts.remove != "":
		a.History.Remove(opts.remove)
	case opts.clear:
		a.History.Clear()
	case opts.theme != "":
		return generate(ctx, a, opts)
	}
	return nil
}

func applySettings(store *settings.Store, opts options) error {
	if opts.clearKey {
		store.ClearAPIKey()
	}
	if opts.apiKey != "" {
		store.SetAPIKey(strings.TrimSpace(opts.apiKey))
	}
	if opts.style != "" {
		style, ok := prompt.ParseStyle(opts.style)
		if !ok {
			return fmt.Errorf("不明な画風です: %s", opts.style)
		}
		store.SetImageStyle(style)
	}
	if opts.signature != "" {
		store.SetSignature(opts.signature)
	}
	if opts.paper >= 0 {
		if opts.paper >= len(domain.PaperSizes()) {
			return fmt.Errorf("用紙プリセットの番号が範囲外です: %d", opts.paper)
		}
		store.SetPaperSizeIndex(opts.paper)
	}
	if opts.landscape != "" {
		landscape, err := cast.ToBoolE(opts.landscape)
		if err != nil {
			return fmt.Errorf("-landscape には true か false を指定してください: %w", err)
		}
		store.SetLandscape(landscape)
	}
	return nil
}

func generate(ctx context.Context, a *app.App, opts options) error {
	if n := len([]rune(opts.theme)); n > prompt.MaxInputRunes {
		return fmt.Errorf("テーマが長すぎます (%d/%d 文字)", n, prompt.MaxInputRunes)
	}

	genOpts := a.CurrentOptions()
	genOpts.ReferenceURL = opts.refURL
	if opts.baseImage != "" {
		data, err := os.ReadFile(opts.baseImage)
		if err != nil {
			return fmt.Errorf("修正元の画像を読み込めません: %w", err)
		}
		data, mimeType := imgutil.ShrinkForUpload(data, generator.ImageCompressionQuality)
		genOpts.BaseImage = base64.StdEncoding.EncodeToString(data)
		genOpts.BaseImageMIMEType = mimeType
	}

	img, err := a.GenerateAndSave(ctx, opts.theme, genOpts)
	if err != nil {
		return errors.New(generator.UserMessage(err))
	}
	fmt.Printf("%s\t%s\n", img.ID, summarize(img.URL))

	if opts.out != "" {
		return saveImage(img.URL, opts.out)
	}
	return nil
}

// saveImage は履歴の画像参照を out に書き出します。外部URLの場合は書き出しません。
func saveImage(ref, out string) error {
	var data []byte
	switch {
	case imgutil.IsDataURL(ref):
		_, decoded, err := imgutil.ParseDataURL(ref)
		if err != nil {
			return err
		}
		data = decoded
	case strings.Contains(ref, "://"):
		fmt.Fprintf(os.Stderr, "画像はURLで返されました: %s\n", ref)
		return nil
	default:
		read, err := os.ReadFile(ref)
		if err != nil {
			return fmt.Errorf("履歴画像を読み込めません: %w", err)
		}
		data = read
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("画像の書き出しに失敗しました: %w", err)
	}
	return nil
}

func printSettings(s domain.Settings) {
	paper := domain.PaperSizeAt(s.PaperSizeIndex)
	fmt.Printf("API Key:    %s\n", settings.MaskAPIKey(s.APIKey))
	fmt.Printf("Paper:      %s (%s)\n", paper.Name, domain.AspectRatio(s.PaperSizeIndex, s.Landscape))
	fmt.Printf("Landscape:  %t\n", s.Landscape)
	fmt.Printf("Style:      %s\n", s.ImageStyle)
	fmt.Printf("Signature:  %s\n", s.Signature)
}

func summarize(ref string) string {
	if imgutil.IsDataURL(ref) && len(ref) > 48 {
		return ref[:48] + "..."
	}
	return ref
}
