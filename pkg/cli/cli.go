package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/zurustar/blockpy/pkg/block"
	"github.com/zurustar/blockpy/pkg/logger"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	InputPath       string // ワークスペースXMLファイル、またはディレクトリのパス
	OutputPath      string // 出力先（空の場合は標準出力）
	OneBased        bool   // リスト・文字列の位置を1始まりにする
	StatementPrefix string // 関数本体の先頭に挿入するコード（%1はブロックID）
	LoopTrap        string // ループ本体の先頭に挿入するコード（%1はブロックID）
	LogLevel        string // ログレベル（debug, info, warn, error）
	ShowHelp        bool   // ヘルプ表示フラグ
}

// ErrNoInput は位置引数が指定されていないことを示す
var ErrNoInput = errors.New("no workspace path given")

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"-h": true, "--h": true, "-help": true, "--help": true,
	"-one-based": true, "--one-based": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("blockpy", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	fs.StringVar(&config.OutputPath, "output", "", "出力先ファイルまたはディレクトリ")
	fs.StringVar(&config.OutputPath, "o", "", "出力先（短縮形）")
	fs.BoolVar(&config.OneBased, "one-based", false, "位置を1始まりにする")
	fs.StringVar(&config.StatementPrefix, "statement-prefix", "", "関数本体の先頭に挿入するコード")
	fs.StringVar(&config.LoopTrap, "loop-trap", "", "ループ本体の先頭に挿入するコード")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.OneBased {
		config.OneBased = env.Bool("BLOCKPY_ONE_BASED")
	}
	if config.OutputPath == "" {
		config.OutputPath = env.Str("BLOCKPY_OUTPUT")
	}
	if config.LogLevel == "info" {
		if level := env.Str("LOG_LEVEL"); level != "" {
			config.LogLevel = strings.ToLower(level)
		}
	}

	// ログレベルの検証
	if _, err := logger.ParseLevel(config.LogLevel); err != nil {
		return nil, err
	}
	config.LogLevel = strings.ToLower(config.LogLevel)

	// 位置引数（ワークスペースのパス）
	switch {
	case fs.NArg() > 1:
		return nil, fmt.Errorf("expected one workspace path, got %d", fs.NArg())
	case fs.NArg() == 1:
		config.InputPath = fs.Arg(0)
	case !config.ShowHelp:
		return nil, ErrNoInput
	}

	return config, nil
}

// Options 生成オプションに変換する
func (c *Config) Options() block.Options {
	return block.Options{
		OneBasedIndex:   c.OneBased,
		StatementPrefix: c.StatementPrefix,
		LoopTrap:        c.LoopTrap,
	}
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// "--" 以降はすべて位置引数
		if arg == "--" {
			flags = append(flags, arg)
			positional = append(positional, args[i+1:]...)
			break
		}

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// --name=value 形式とブール型フラグは次の引数を取らない
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	io.WriteString(w, helpText)
}

const helpText = `blockpy - Blockly workspace to MicroPython generator

Usage:
  blockpy [options] <workspace>

Arguments:
  workspace     BlocklyワークスペースのXMLファイル、またはディレクトリ
                ディレクトリを指定した場合、*.xml を再帰的に検索してすべて変換

Options:
  -o, --output <path>           出力先（ファイル指定時はファイル、ディレクトリ指定時はディレクトリ）
                                省略時は標準出力
  --one-based                   リスト・文字列の位置を1始まりにする
  --statement-prefix <code>     関数本体の先頭に挿入するコード（%1 はブロックID）
  --loop-trap <code>            ループ本体の先頭に挿入するコード（%1 はブロックID）
  -l, --log-level <level>       ログレベル: debug, info, warn, error（デフォルト: info）
  -h, --help                    このヘルプを表示

Environment Variables:
  BLOCKPY_ONE_BASED=1           位置を1始まりにする
  BLOCKPY_OUTPUT=<path>         出力先
  LOG_LEVEL=<level>             ログレベル

Examples:
  blockpy program.xml                     標準出力に書き出す
  blockpy -o main.py program.xml          ファイルに書き出す
  blockpy -o build/ workspaces/           ディレクトリ内のすべてのワークスペースを変換
  blockpy --one-based program.xml         1始まりの位置で変換
`
