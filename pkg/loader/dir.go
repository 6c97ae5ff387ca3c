package loader

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/legodom/lego/pkg/sfc"
)

// Dir loads components from a file tree. A tag matches <tag>.lego at the
// root, or any .lego file below it whose derived name is the tag, so
// TodoList.lego serves todo-list.
type Dir struct {
	fsys fs.FS
}

// NewDir serves components from the directory at root.
func NewDir(root string) *Dir { return &Dir{fsys: os.DirFS(root)} }

// NewFS serves components from fsys.
func NewFS(fsys fs.FS) *Dir { return &Dir{fsys: fsys} }

// Load reads the source for tag.
func (d *Dir) Load(ctx context.Context, tag string) (string, error) {
	b, err := fs.ReadFile(d.fsys, tag+sfc.Ext)
	if err == nil {
		return string(b), nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	name, err := d.find(ctx, tag)
	if err != nil || name == "" {
		return "", err
	}
	b, err = fs.ReadFile(d.fsys, name)
	return string(b), err
}

// Files returns every component file in the tree.
func (d *Dir) Files() ([]string, error) {
	var out []string
	err := fs.WalkDir(d.fsys, ".", func(p string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !e.IsDir() && strings.HasSuffix(p, sfc.Ext) {
			out = append(out, p)
		}
		return nil
	})
	return out, err
}

// ReadFile reads a file returned by Files.
func (d *Dir) ReadFile(name string) (string, error) {
	b, err := fs.ReadFile(d.fsys, name)
	return string(b), err
}

func (d *Dir) find(ctx context.Context, tag string) (string, error) {
	files, err := d.Files()
	if err != nil {
		return "", err
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if sfc.NameFromFile(f) == tag {
			return f, nil
		}
	}
	return "", nil
}
