package binex

import (
	"io"
	"os"
	"strings"

	"github.com/mholt/archiver/v3"
)

// Open opens a BINEX stream file, transparently decompressing it first if
// its name ends in ".gz" or ".Z". This mirrors the "file may itself be
// plain, gzip-wrapped, or in-memory" source abstraction spec.md section 5
// describes, and reuses the same archiver/v3 dependency the RINEX side of
// this module uses for the same purpose.
func Open(path string) (io.ReadCloser, error) {
	if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".Z") {
		return os.Open(path)
	}

	tmp, err := os.CreateTemp("", "binex-*.bnx")
	if err != nil {
		return nil, err
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := archiver.DecompressFile(path, tmpPath); err != nil {
		os.Remove(tmpPath)
		return nil, err
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return nil, err
	}
	return &removeOnCloseFile{File: f, path: tmpPath}, nil
}

type removeOnCloseFile struct {
	*os.File
	path string
}

func (f *removeOnCloseFile) Close() error {
	err := f.File.Close()
	os.Remove(f.path)
	return err
}
