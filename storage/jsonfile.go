package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrNotFound は文書ファイルが存在しないか空であることを示します。空の文書として扱ってください。
	ErrNotFound = errors.New("document not found")
	// ErrParse は文書が壊れていることを示します。上書きしてはいけません。
	ErrParse = errors.New("document is not valid JSON")
	// ErrIO は読み書きそのものの失敗です。
	ErrIO = errors.New("document I/O failed")
)

const tempPattern = ".tmp-*"

// JSONFile はひとつの JSON 文書をファイルに保存/読み込みします。
// 書き込みは一時ファイルを経由するため、読み手が途中までの内容を見ることはありません。
type JSONFile struct {
	path string
	perm os.FileMode
}

func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, perm: 0o644}
}

func (f *JSONFile) Path() string { return f.path }

// Load は文書を v に読み込みます。
func (f *JSONFile) Load(v any) error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("%w: read %s: %v", ErrIO, f.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, f.path, err)
	}
	return nil
}

// Save は v を書き込みます。
func (f *JSONFile) Save(v any) error {
	tmp, err := f.stage(v)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: replace %s: %v", ErrIO, f.path, err)
	}
	return nil
}

// stage は v を対象と同じディレクトリの一時ファイルに書き、fsync してからそのパスを返します。
func (f *JSONFile) stage(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("%w: encode %s: %v", ErrIO, f.path, err)
	}
	data = append(data, '\n')

	dir, base := filepath.Split(f.path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+tempPattern)
	if err != nil {
		return "", fmt.Errorf("%w: create temp for %s: %v", ErrIO, f.path, err)
	}
	name := tmp.Name()
	fail := func(step string, err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: %s %s: %v", ErrIO, step, name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		return fail("write", err)
	}
	if err := tmp.Chmod(f.perm); err != nil {
		return fail("chmod", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("%w: close %s: %v", ErrIO, name, err)
	}
	return name, nil
}

// orphans は中断された書き込みが残した一時ファイルを返します。
func (f *JSONFile) orphans() ([]string, error) {
	return filepath.Glob(f.path + tempPattern)
}
