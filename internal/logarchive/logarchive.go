// Package logarchive bundles build log files into a zstd-compressed tar
// archive.
package logarchive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// Write archives files into dest, a .tar.zst file. Entries are stored under
// their base names, in the order given; files that do not exist are skipped
// and reported in missing.
func Write(dest string, files []string) (missing []string, err error) {
	out, err := os.Create(dest)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return nil, err
	}
	tw := tar.NewWriter(enc)

	for _, path := range files {
		ok, err := addFile(tw, path)
		if err != nil {
			enc.Close()
			return nil, fmt.Errorf("archive %s: %w", path, err)
		}
		if !ok {
			missing = append(missing, path)
		}
	}

	if err := tw.Close(); err != nil {
		enc.Close()
		return nil, err
	}
	return missing, enc.Close()
}

func addFile(tw *tar.Writer, path string) (bool, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return false, err
	}
	hdr.Name = filepath.Base(path)
	if err := tw.WriteHeader(hdr); err != nil {
		return false, err
	}
	if _, err := io.Copy(tw, f); err != nil {
		return false, err
	}
	return true, nil
}

// List returns the entry names and contents of an archive written by Write.
func List(path string) (map[string][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	entries := make(map[string][]byte)
	tr := tar.NewReader(dec)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, err
		}
		entries[hdr.Name] = data
	}
}
