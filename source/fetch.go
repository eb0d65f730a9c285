package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/EDITO-Infra/makestac/util"
)

// IsRemote reports whether the URI names a cloud-hosted source rather than a
// local path
func IsRemote(uri string) bool {
	return strings.HasPrefix(uri, "s3://") || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://")
}

// SplitS3URI splits s3://bucket/key/parts into bucket and key
func SplitS3URI(uri string) (bucket, key string, err error) {
	trimmed := strings.TrimPrefix(uri, "s3://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not an s3 URI: %s", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("s3 URI `%s` must name a bucket and a key", uri)
	}
	return parts[0], parts[1], nil
}

// NewS3Client builds a MinIO client for the configured endpoint. Credentials
// come from the EDITO credentials blob or the standard AWS variables; absent
// credentials mean anonymous access, which is fine for public buckets.
func NewS3Client() (*minio.Client, error) {
	accessKey, secretKey, sessionToken := util.GetStorageCredentials()
	insecure, _ := util.IsS3Insecure()
	options := &minio.Options{
		Secure: !insecure,
		Region: util.GetS3Region(),
	}
	if accessKey != "" {
		options.Creds = credentials.NewStaticV4(accessKey, secretKey, sessionToken)
	} else {
		options.Creds = credentials.NewStaticV4("", "", "")
	}
	return minio.New(util.GetS3Endpoint(), options)
}

// FetchToTemp downloads a remote source to a temp file and returns its path
// along with a cleanup func. The single attempt propagates the underlying
// I/O error without retry.
func FetchToTemp(ctx util.LogContext, uri, pattern string) (path string, cleanup func(), err error) {
	tmp, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", nil, err
	}
	cleanup = func() {
		os.Remove(tmp.Name())
	}

	if strings.HasPrefix(uri, "s3://") {
		tmp.Close()
		if err = fetchS3(uri, tmp.Name()); err != nil {
			cleanup()
			return "", nil, util.LogSimpleErr(ctx, "Could not fetch "+uri, err)
		}
		util.LogDebug(ctx, "Fetched "+uri+" to "+tmp.Name())
		return tmp.Name(), cleanup, nil
	}

	defer tmp.Close()
	if err = fetchHTTP(ctx, uri, tmp); err != nil {
		cleanup()
		return "", nil, err
	}
	util.LogDebug(ctx, "Fetched "+uri+" to "+tmp.Name())
	return tmp.Name(), cleanup, nil
}

func fetchS3(uri, destination string) error {
	bucket, key, err := SplitS3URI(uri)
	if err != nil {
		return err
	}
	client, err := NewS3Client()
	if err != nil {
		return err
	}
	return client.FGetObject(context.Background(), bucket, key, destination, minio.GetObjectOptions{})
}

func fetchHTTP(ctx util.LogContext, uri string, destination io.Writer) error {
	response, err := util.HTTPClient().Get(uri)
	if err != nil {
		return util.LogSimpleErr(ctx, "Could not fetch "+uri, err)
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		fetchErr := util.Error{
			LogMsg:     "Remote source fetch returned " + response.Status,
			SimpleMsg:  fmt.Sprintf("fetching %s failed: %s", uri, response.Status),
			URL:        uri,
			HTTPStatus: response.StatusCode,
		}
		return fetchErr.Log(ctx, "")
	}
	_, err = io.Copy(destination, response.Body)
	return err
}

// OpenReaderAt opens a source as a random-access reader, which the columnar
// engine needs. Local files and s3:// objects are read in place; http(s)
// sources are staged to a temp file first.
func OpenReaderAt(ctx util.LogContext, uri string) (reader io.ReaderAt, size int64, closer func() error, err error) {
	switch {
	case strings.HasPrefix(uri, "s3://"):
		bucket, key, err := SplitS3URI(uri)
		if err != nil {
			return nil, 0, nil, err
		}
		client, err := NewS3Client()
		if err != nil {
			return nil, 0, nil, err
		}
		object, err := client.GetObject(context.Background(), bucket, key, minio.GetObjectOptions{})
		if err != nil {
			return nil, 0, nil, err
		}
		info, err := object.Stat()
		if err != nil {
			object.Close()
			return nil, 0, nil, err
		}
		return object, info.Size, object.Close, nil

	case IsRemote(uri):
		path, cleanup, err := FetchToTemp(ctx, uri, "makestac-*.parquet")
		if err != nil {
			return nil, 0, nil, err
		}
		file, err := os.Open(path)
		if err != nil {
			cleanup()
			return nil, 0, nil, err
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			cleanup()
			return nil, 0, nil, err
		}
		return file, info.Size(), func() error {
			err := file.Close()
			cleanup()
			return err
		}, nil

	default:
		file, err := os.Open(uri)
		if err != nil {
			return nil, 0, nil, err
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return nil, 0, nil, err
		}
		return file, info.Size(), file.Close, nil
	}
}
