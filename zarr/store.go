package zarr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"

	"github.com/EDITO-Infra/makestac/source"
	"github.com/EDITO-Infra/makestac/util"
)

// ErrKeyNotFound reports a store key with no object behind it. Callers use it
// to distinguish an absent array from a broken store.
var ErrKeyNotFound = errors.New("zarr: key not found")

// Store is a minimal read-only view of a Zarr v2 store: metadata documents
// and chunk objects addressed by slash-separated keys.
type Store interface {
	Get(key string) ([]byte, error)
}

func openStore(logCtx util.LogContext, uri string) (Store, error) {
	trimmed := strings.TrimRight(uri, "/")
	switch {
	case strings.HasPrefix(trimmed, "s3://"):
		bucket, prefix, err := source.SplitS3URI(trimmed)
		if err != nil {
			return nil, err
		}
		client, err := source.NewS3Client()
		if err != nil {
			return nil, err
		}
		return &s3Store{client: client, bucket: bucket, prefix: prefix}, nil
	case strings.HasPrefix(trimmed, "http://"), strings.HasPrefix(trimmed, "https://"):
		return &httpStore{base: trimmed, logCtx: logCtx}, nil
	default:
		return &dirStore{root: trimmed}, nil
	}
}

type dirStore struct {
	root string
}

func (s *dirStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil, ErrKeyNotFound
	}
	return data, err
}

type httpStore struct {
	base   string
	logCtx util.LogContext
}

func (s *httpStore) Get(key string) ([]byte, error) {
	target := s.base + "/" + key
	response, err := util.HTTPClient().Get(target)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	switch {
	case response.StatusCode == http.StatusNotFound:
		return nil, ErrKeyNotFound
	case response.StatusCode != http.StatusOK:
		storeErr := util.Error{
			LogMsg:     "Zarr store request returned " + response.Status,
			SimpleMsg:  fmt.Sprintf("fetching %s failed: %s", target, response.Status),
			URL:        target,
			HTTPStatus: response.StatusCode,
		}
		return nil, storeErr.Log(s.logCtx, "")
	}
	return io.ReadAll(response.Body)
}

type s3Store struct {
	client *minio.Client
	bucket string
	prefix string
}

func (s *s3Store) Get(key string) ([]byte, error) {
	object, err := s.client.GetObject(context.Background(), s.bucket, s.prefix+"/"+key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()
	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return data, nil
}
