package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/blockpy/pkg/cli"
	"github.com/zurustar/blockpy/pkg/generator"
	"github.com/zurustar/blockpy/pkg/logger"
	"github.com/zurustar/blockpy/pkg/workspace"
)

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	stdout io.Writer
	gen    *generator.Generator
}

// output は1つのワークスペースの変換結果
type output struct {
	source string // 元のXMLファイル
	rel    string // 入力ルートからの相対パス
	code   string // 生成されたMicroPythonコード
}

// New Applicationを作成。stdoutには出力先未指定時の生成コードを書く
func New(stdout io.Writer) *Application {
	return &Application{
		stdout: stdout,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Info("Application started", "input", app.config.InputPath)

	// 3. ワークスペースの読み込み
	files, err := workspace.NewLoader(app.config.InputPath, app.config.Options()).LoadAll()
	if err != nil {
		return fmt.Errorf("failed to load workspaces: %w", err)
	}

	app.log.Info("Workspaces loaded", "count", len(files))

	// 4. コード生成（すべて成功した場合のみ書き出す）
	app.gen = generator.New()
	outputs, err := app.generateAll(files)
	if err != nil {
		return err
	}

	// 5. 書き出し
	if err := app.writeOutputs(outputs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	app.log.Info("Application terminated normally")
	return nil
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// generateAll すべてのワークスペースを変換する
func (app *Application) generateAll(files []workspace.File) ([]output, error) {
	root := app.config.InputPath
	if info, err := os.Stat(root); err == nil && !info.IsDir() {
		root = filepath.Dir(root)
	}

	outputs := make([]output, 0, len(files))
	for _, f := range files {
		code, err := app.gen.Generate(f.Workspace)
		if err != nil {
			return nil, fmt.Errorf("failed to generate %s: %w", f.Path, err)
		}
		rel, err := filepath.Rel(root, f.Path)
		if err != nil {
			rel = f.Name
		}
		app.log.Debug("Workspace generated", "name", f.Name, "blocks", f.Workspace.CountBlocks(), "bytes", len(code))
		outputs = append(outputs, output{source: f.Path, rel: rel, code: code})
	}
	return outputs, nil
}

// writeOutputs 生成コードを書き出す
// 出力先未指定なら標準出力、1ファイル入力ならそのファイル、それ以外はディレクトリ
func (app *Application) writeOutputs(outputs []output) error {
	dest := app.config.OutputPath
	if dest == "" {
		for i, o := range outputs {
			if len(outputs) > 1 {
				if i > 0 {
					fmt.Fprintln(app.stdout)
				}
				fmt.Fprintf(app.stdout, "# %s\n", o.rel)
			}
			if _, err := io.WriteString(app.stdout, o.code); err != nil {
				return err
			}
		}
		return nil
	}

	if len(outputs) == 1 && !app.isDirectoryOutput(dest) {
		return app.writeFile(dest, outputs[0])
	}
	for _, o := range outputs {
		path := filepath.Join(dest, strings.TrimSuffix(o.rel, filepath.Ext(o.rel))+".py")
		if err := app.writeFile(path, o); err != nil {
			return err
		}
	}
	return nil
}

// isDirectoryOutput 出力先をディレクトリとして扱うか判定
func (app *Application) isDirectoryOutput(dest string) bool {
	if strings.HasSuffix(dest, "/") || strings.HasSuffix(dest, string(filepath.Separator)) {
		return true
	}
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		return true
	}
	info, err := os.Stat(app.config.InputPath)
	return err == nil && info.IsDir()
}

func (app *Application) writeFile(path string, o output) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(o.code), 0o644); err != nil {
		return err
	}
	app.log.Info("Output written", "source", o.source, "path", path)
	return nil
}
