/*
Copyright © 2026 the buoyingest authors.
This file is part of buoyingest.

buoyingest is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

buoyingest is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with buoyingest.  If not, see <http://www.gnu.org/licenses/>.
*/

package buoyingest

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/s3blob"
)

// DatastreamStorage persists finished output files (datasets and plots)
// under datastream-derived keys. Implementations own all blocking I/O; the
// pipeline hands them finished local files and never holds storage
// resources across its own operations.
type DatastreamStorage interface {
	// Save copies the finished local file to the given key under the
	// storage root.
	Save(ctx context.Context, localPath, key string) error
	// Root describes where files end up, for logging.
	Root() string
}

// BlobStorage stores output files in a blob bucket: a local directory, or
// an S3 bucket when the root is given as "s3://name". S3 access assumes the
// AWS_REGION, AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment
// variables are set.
type BlobStorage struct {
	bucket *blob.Bucket
	root   string
}

// NewBlobStorage opens the storage rooted at root, creating a local
// directory root if it does not exist yet.
func NewBlobStorage(ctx context.Context, root string) (*BlobStorage, error) {
	if strings.HasPrefix(root, "s3://") {
		u, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("buoyingest: parsing storage root: %v", err)
		}
		region := os.Getenv("AWS_REGION")
		if region == "" {
			region = "us-east-2"
		}
		c := &aws.Config{
			Region:      aws.String(region),
			Credentials: credentials.NewEnvCredentials(),
		}
		bucket, err := s3blob.OpenBucket(ctx, session.Must(session.NewSession(c)), u.Hostname())
		if err != nil {
			return nil, fmt.Errorf("buoyingest: opening s3 storage: %v", err)
		}
		return &BlobStorage{bucket: bucket, root: root}, nil
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("buoyingest: creating storage directory: %v", err)
	}
	bucket, err := fileblob.NewBucket(root)
	if err != nil {
		return nil, fmt.Errorf("buoyingest: opening file storage: %v", err)
	}
	return &BlobStorage{bucket: bucket, root: root}, nil
}

// Save implements DatastreamStorage.
func (s *BlobStorage) Save(ctx context.Context, localPath, key string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("buoyingest: opening file for storage: %v", err)
	}
	defer f.Close()

	// fileblob does not create intermediate directories itself.
	if !strings.HasPrefix(s.root, "s3://") {
		if dir := path.Dir(key); dir != "." {
			if err := os.MkdirAll(s.root+"/"+dir, 0755); err != nil {
				return fmt.Errorf("buoyingest: creating storage directory: %v", err)
			}
		}
	}

	w, err := s.bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return fmt.Errorf("buoyingest: storing %s: %v", key, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("buoyingest: storing %s: %v", key, err)
	}
	return w.Close()
}

// Root implements DatastreamStorage.
func (s *BlobStorage) Root() string { return s.root }

// StorageKey builds the key an output file is stored under:
// {location_id}/{datastream}/{filename}.
func StorageKey(locationID, datastream, filename string) string {
	return path.Join(locationID, datastream, filename)
}
