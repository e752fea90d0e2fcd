/*
Copyright © 2026 the WV-LUT authors.
This file is part of WV-LUT.

WV-LUT is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

WV-LUT is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with WV-LUT.  If not, see <http://www.gnu.org/licenses/>.
*/

package wvlututil

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/cenkalti/backoff"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
	"github.com/sirupsen/logrus"
)

// maybeDownload checks if path is an existing local file.
// If not, and it is a URL or a blob storage location, it downloads
// the file to a temporary directory and returns the path to the
// downloaded file. Otherwise it returns path unchanged.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return downloadHTTP(ctx, path, log)
	}
	if IsBlob(path) {
		return downloadBlob(ctx, path, log)
	}
	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file. Failed requests are retried with
// exponential backoff.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	dir, err := ioutil.TempDir("", "wvlut")
	if err != nil {
		return "", fmt.Errorf("wvlututil: creating temporary download directory: %v", err)
	}
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("wvlututil: parsing url '%s': %v", path, err)
	}
	out := filepath.Join(dir, filepath.Base(u.Path))

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 2 * time.Minute
	err = backoff.RetryNotify(
		func() error {
			req, err := http.NewRequest("GET", path, nil)
			if err != nil {
				return backoff.Permanent(err)
			}
			resp, err := http.DefaultClient.Do(req.WithContext(ctx))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return backoff.Permanent(fmt.Errorf("downloading %s: %s", path, resp.Status))
			} else if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("downloading %s: %s", path, resp.Status)
			}
			w, err := os.Create(out)
			if err != nil {
				return backoff.Permanent(err)
			}
			if _, err = io.Copy(w, resp.Body); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
		backoff.WithContext(b, ctx),
		func(err error, d time.Duration) {
			log.WithError(err).WithField("retry", d).Warn("download failed")
		},
	)
	if err != nil {
		return "", fmt.Errorf("wvlututil: %v", err)
	}
	log.WithFields(logrus.Fields{"url": path, "file": out}).Info("downloaded file")
	return out, nil
}

// IsBlob returns whether the given filename represents a blob.
// (i.e., if it starts with `gs://`, 's3://', or 'file://').
func IsBlob(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://") || strings.HasPrefix(path, "file://")
}

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// The currently accepted storage providers are "file" for a directory on the
// local filesystem, "gs" for Google Cloud Storage, and "s3" for AWS S3.
// For "file", name is the path of the directory, e.g. "file:///tmp/luts".
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("wvlututil.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.NewBucket(filepath.FromSlash(u.Host + u.Path))
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("wvlututil.OpenBucket: invalid provider %s", u.Scheme)
	}
}

// splitBlob splits a blob path into the bucket name and the key of the
// object within the bucket. For "file" paths, the bucket is the directory
// holding the file.
func splitBlob(path string) (bucket, key string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", err
	}
	if u.Scheme == "file" {
		p := u.Host + u.Path
		return "file://" + filepath.ToSlash(filepath.Dir(p)), filepath.Base(p), nil
	}
	return u.Scheme + "://" + u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "eu-central-1"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

// downloadBlob downloads the specified file from blob storage.
func downloadBlob(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	bucketName, key, err := splitBlob(path)
	if err != nil {
		return "", fmt.Errorf("wvlututil: parsing blob path '%s': %v", path, err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return "", err
	}
	dir, err := ioutil.TempDir("", "wvlut")
	if err != nil {
		return "", fmt.Errorf("wvlututil: creating temporary download directory: %v", err)
	}
	out := filepath.Join(dir, filepath.Base(key))
	r, err := bucket.NewReader(ctx, key)
	if err != nil {
		return "", fmt.Errorf("wvlututil: opening blob '%s': %v", path, err)
	}
	defer r.Close()
	w, err := os.Create(out)
	if err != nil {
		return "", fmt.Errorf("wvlututil: creating file for download: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("wvlututil: downloading blob '%s': %v", path, err)
	}
	if err = w.Close(); err != nil {
		return "", fmt.Errorf("wvlututil: downloading blob '%s': %v", path, err)
	}
	log.WithFields(logrus.Fields{"blob": path, "file": out}).Info("downloaded file")
	return out, nil
}
