// Package workspace reads Blockly XML workspaces into block graphs.
package workspace

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"

	"github.com/zurustar/blockpy/pkg/block"
	"github.com/zurustar/blockpy/pkg/logger"
)

// File is one loaded workspace file.
type File struct {
	Path      string
	Name      string
	Workspace *block.Workspace
}

// Loader reads workspace files from a file or a directory tree.
type Loader struct {
	root string
	opts block.Options
	log  *slog.Logger
}

// NewLoader creates a Loader. root is a single .xml file or a directory that
// is searched recursively. opts is attached to every loaded workspace.
func NewLoader(root string, opts block.Options) *Loader {
	return &Loader{
		root: root,
		opts: opts,
		log:  logger.Component("workspace"),
	}
}

// LoadAll loads every workspace under the root, in path order.
func (l *Loader) LoadAll() ([]File, error) {
	paths, err := l.findWorkspaceFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to find workspace files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no workspace files found in %s", l.root)
	}

	files := make([]File, 0, len(paths))
	for _, path := range paths {
		ws, err := LoadFile(path, l.opts)
		if err != nil {
			return nil, err
		}
		l.log.Debug("workspace loaded", "path", path, "blocks", ws.CountBlocks(), "variables", len(ws.Variables))
		files = append(files, File{
			Path:      path,
			Name:      filepath.Base(path),
			Workspace: ws,
		})
	}
	return files, nil
}

// findWorkspaceFiles lists .xml files below the root (case-insensitive).
func (l *Loader) findWorkspaceFiles() ([]string, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{l.root}, nil
	}

	var paths []string
	err = filepath.WalkDir(l.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".xml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadFile reads and parses one workspace file.
func LoadFile(path string, opts block.Options) (*block.Workspace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Message: err.Error(), Err: err}
	}
	return Parse(path, data, opts)
}

// Parse decodes Blockly XML. path is only used in error messages.
//
// A declared encoding is honoured. Input without a declaration that is not
// valid UTF-8 is read as Shift-JIS.
func Parse(path string, data []byte, opts block.Options) (*block.Workspace, error) {
	if !utf8.Valid(data) && !declaresEncoding(data) {
		converted, err := convertShiftJISToUTF8(data)
		if err != nil {
			return nil, &LoadError{Path: path, Message: err.Error()}
		}
		data = converted
	}

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charsetReader

	var doc xmlWorkspace
	if err := dec.Decode(&doc); err != nil {
		return nil, newDecodeError(path, data, dec, err)
	}

	ws := &block.Workspace{Options: opts}
	for _, v := range doc.Variables {
		ws.Variables = append(ws.Variables, block.Variable{
			ID:   v.ID,
			Name: strings.TrimSpace(v.Name),
			Type: v.Type,
		})
	}
	for i := range doc.Blocks {
		b, err := doc.Blocks[i].toBlock()
		if err != nil {
			return nil, &LoadError{Path: path, Message: err.Error(), Err: err}
		}
		ws.TopBlocks = append(ws.TopBlocks, b)
	}
	return ws, nil
}

func newDecodeError(path string, data []byte, dec *xml.Decoder, err error) *LoadError {
	var syntax *xml.SyntaxError
	if errors.As(err, &syntax) {
		line, column := dec.InputPos()
		if line != syntax.Line {
			column = 0
		}
		return &LoadError{
			Path:    path,
			Line:    syntax.Line,
			Column:  column,
			Message: syntax.Msg,
			Context: GenerateErrorContext(string(data), syntax.Line, column),
			Err:     err,
		}
	}
	return &LoadError{Path: path, Message: err.Error(), Err: err}
}

// charsetReader resolves encoding labels the way browsers do, so the usual
// Blockly exports (UTF-8, Shift_JIS, EUC-JP, windows-1252) all load.
func charsetReader(label string, input io.Reader) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", label, err)
	}
	return transform.NewReader(input, enc.NewDecoder()), nil
}

// declaresEncoding reports whether the XML declaration names an encoding.
func declaresEncoding(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(data, []byte("<?xml")) {
		return false
	}
	end := bytes.Index(data, []byte("?>"))
	if end < 0 {
		return false
	}
	return bytes.Contains(data[:end], []byte("encoding"))
}

// convertShiftJISToUTF8 decodes legacy Shift-JIS input.
func convertShiftJISToUTF8(data []byte) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Shift-JIS: %w", err)
	}
	return out, nil
}
