package rinex

import (
	"io"
	"os"
	"strings"

	"github.com/mholt/archiver/v3"
)

// Open opens a RINEX stream file, transparently decompressing it first if
// its name carries a gzip or Unix-compress extension. This is the "the byte
// source may itself be gzip-wrapped" abstraction the RnxFil.Compression
// field already tracks for file-level metadata; Open provides the matching
// streaming entry point so callers don't have to shell out to gunzip/
// uncompress first. Hatanaka (CRINEX) decompression is a separate concern,
// handled by DecompressObs once a plain byte stream is in hand.
func Open(path string) (io.ReadCloser, error) {
	if !strings.HasSuffix(path, ".gz") && !strings.HasSuffix(path, ".Z") {
		return os.Open(path)
	}

	tmp, err := os.CreateTemp("", "rinex-*.rnx")
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
