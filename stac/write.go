package stac

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/EDITO-Infra/makestac/model"
)

// MarshalItem serializes an Item as pretty-printed UTF-8 JSON with a trailing
// newline. Output is deterministic for a given Item.
func MarshalItem(item *model.StacItem) ([]byte, error) {
	data, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// WriteItemFile persists an Item to the given path, overwriting any existing
// file. The write goes through a temp file in the destination directory and
// a rename, so a crash mid-write never leaves a truncated file behind.
func WriteItemFile(item *model.StacItem, path string) error {
	data, err := MarshalItem(item)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".makestac-*.json.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
