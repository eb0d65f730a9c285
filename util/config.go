// Copyright 2025, EDITO Infra Contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"os"
	"strconv"
)

// Environment variables
const (
	S3_ENDPOINT    = "MAKESTAC_S3_ENDPOINT"
	S3_REGION      = "MAKESTAC_S3_REGION"
	S3_INSECURE    = "MAKESTAC_S3_INSECURE"
	S3_CREDENTIALS = "MAKESTAC_S3_CREDENTIALS"
	LOG_LEVEL      = "MAKESTAC_LOG_LEVEL"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// GetS3Endpoint returns the object-storage endpoint used to resolve s3:// URIs,
// falling back to the AWS default when the environment does not name one
func GetS3Endpoint() string {
	endpoint, ok := os.LookupEnv(S3_ENDPOINT)
	if !ok {
		LogInfo(&BasicLogContext{}, "Did not get S3 endpoint from the environment. Using default endpoint: "+defaultS3Endpoint)
		return defaultS3Endpoint
	}
	return endpoint
}

// GetS3Region returns a string for the MAKESTAC_S3_REGION environment variable
func GetS3Region() string {
	return os.Getenv(S3_REGION)
}

// IsS3Insecure returns true if MAKESTAC_S3_INSECURE is set to a true value,
// meaning s3:// URIs are fetched over plain HTTP
func IsS3Insecure() (bool, error) {
	return strconv.ParseBool(os.Getenv(S3_INSECURE))
}
