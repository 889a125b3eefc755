package archive

import (
	"context"
	"fmt"
	"os"

	archfs "dircore/internal/infra/archive/fs"
	archmem "dircore/internal/infra/archive/memory"
	archs3 "dircore/internal/infra/archive/s3"
)

// OpenDriver opens the archive backend named by driver. An empty driver
// selects the filesystem backend. The fsRoot argument applies to the fs
// driver only; the s3 driver is configured from the environment.
func OpenDriver(ctx context.Context, driver Driver, fsRoot string) (Store, error) {
	if driver == "" {
		driver = DriverFilesystem
	}
	switch driver {
	case DriverFilesystem:
		return archfs.New(fsRoot)
	case DriverS3:
		return archs3.OpenFromEnv(ctx)
	case DriverMemory:
		return archmem.New(), nil
	default:
		return nil, fmt.Errorf("unknown archive driver %s", driver)
	}
}

// Open selects an archive Store implementation using environment variables.
//
//	DIRCORE_ARCHIVE_DRIVER: fs|s3|memory (default fs)
//	DIRCORE_ARCHIVE_FS_ROOT: directory root when driver=fs (default ./archivedata)
//	(S3 specific variables documented in the s3 backend)
func Open(ctx context.Context) (Store, error) {
	driver := Driver(os.Getenv("DIRCORE_ARCHIVE_DRIVER"))
	root := os.Getenv("DIRCORE_ARCHIVE_FS_ROOT")
	return OpenDriver(ctx, driver, root)
}
