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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
	"github.com/sirupsen/logrus"
)

// uploader stages output files that are destined for blob storage in a
// local temporary directory and uploads them when upload is called.
type uploader struct {
	// files is a set of file path pairs. The first of each pair
	// is a local file path and the second is a blob storage
	// path where it should be uploaded to.
	files [][2]string
	err   error
	dir   string
}

// maybeUpload checks whether the given output file path refers to
// a blob storage location. If it does, then a temporary file location
// is returned. The file will then be uploaded to blob storage when
// the upload method is run.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		u.dir, u.err = ioutil.TempDir("", "wvlut")
		if u.err != nil {
			return ""
		}
	}
	local := filepath.Join(u.dir, filepath.Base(path))
	u.files = append(u.files, [2]string{local, path})
	return local
}

// upload copies the staged files to blob storage.
func (u *uploader) upload(ctx context.Context, log logrus.FieldLogger) error {
	if u.err != nil {
		return u.err
	}
	for _, files := range u.files {
		if err := uploadFile(ctx, files[0], files[1]); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{"file": files[0], "blob": files[1]}).Info("uploaded file")
	}
	if u.dir != "" {
		return os.RemoveAll(u.dir)
	}
	return nil
}

func uploadFile(ctx context.Context, local, remote string) error {
	r, err := os.Open(local)
	if err != nil {
		return fmt.Errorf("wvlututil: opening file '%s' for upload: %v", local, err)
	}
	defer r.Close()
	bucketName, key, err := splitBlob(remote)
	if err != nil {
		return fmt.Errorf("wvlututil: parsing url '%s' for upload: %v", remote, err)
	}
	bucket, err := OpenBucket(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("wvlututil: opening bucket to upload file '%s': %v", remote, err)
	}
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("wvlututil: opening writer to upload file '%s': %v", remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("wvlututil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("wvlututil: uploading file '%s' to '%s': %v", local, remote, err)
	}
	return nil
}
