package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// ParseStorageCredentials parses a raw JSON credentials blob, as handed out by
// the EDITO datalab for its MinIO buckets, into a useable object
func ParseStorageCredentials(data []byte) (StorageCredentials, error) {
	credentials := StorageCredentials{}
	err := json.Unmarshal(data, &credentials)
	return credentials, err
}

// StorageCredentials is a parsed map of object-storage credentials; not all
// keys present in the blob are meaningful here
type StorageCredentials map[string]interface{}

// String recovers the value at the given key, assuming it is a string
func (c StorageCredentials) String(key string) (string, error) {
	if val, ok := c[key]; !ok {
		return "", fmt.Errorf("Credential key does not exist: %s", key)
	} else if valStr, ok := val.(string); ok {
		return valStr, nil
	} else {
		return "", fmt.Errorf("Could not convert value to string: key=%s, value=%v", key, val)
	}
}

// GetStorageCredentials resolves the access key, secret key and optional
// session token for object storage. The MAKESTAC_S3_CREDENTIALS blob takes
// precedence; otherwise the standard AWS variables are used. Empty strings
// mean anonymous access.
func GetStorageCredentials() (accessKey, secretKey, sessionToken string) {
	if blob, ok := os.LookupEnv(S3_CREDENTIALS); ok {
		credentials, err := ParseStorageCredentials([]byte(blob))
		if err != nil {
			LogAlert(&BasicLogContext{}, "Could not parse "+S3_CREDENTIALS+" blob: "+err.Error())
		} else {
			accessKey, _ = credentials.String("accessKey")
			secretKey, _ = credentials.String("secretKey")
			sessionToken, _ = credentials.String("sessionToken")
			return accessKey, secretKey, sessionToken
		}
	}
	return os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"), os.Getenv("AWS_SESSION_TOKEN")
}
