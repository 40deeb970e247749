/*
 * files.go, part of mrchem.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package chem

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/edsrzf/mmap-go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// compReader closes the decompressor (if any) and then the backing file.
type compReader struct {
	r      io.Reader
	closer func() error
	fp     io.Closer
	mapped mmap.MMap
}

func (C *compReader) Read(p []byte) (int, error) {
	return C.r.Read(p)
}

// Close closes the decompressor, unmaps the file if it was mapped, and closes
// the file.
func (C *compReader) Close() error {
	var errs []error
	if C.closer != nil {
		errs = append(errs, C.closer())
	}
	if C.mapped != nil {
		errs = append(errs, C.mapped.Unmap())
	}
	errs = append(errs, C.fp.Close())
	return errors.Join(errs...)
}

// OpenMaybeCompressed opens a file that may be gzip or zstd compressed, deciding
// from its first bytes. Uncompressed, non-empty files are mapped read-only into
// memory.
func OpenMaybeCompressed(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, WrapError(err, "OpenMaybeCompressed", "opening %s", name)
	}
	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		f.Close()
		return nil, WrapError(err, "OpenMaybeCompressed", "reading %s", name)
	}
	head = head[:n]
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, WrapError(err, "OpenMaybeCompressed", "seeking %s", name)
	}
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		z, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, WrapError(err, "OpenMaybeCompressed", "gzip header of %s", name)
		}
		return &compReader{r: z, closer: z.Close, fp: f}, nil
	case bytes.HasPrefix(head, zstdMagic):
		z, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, WrapError(err, "OpenMaybeCompressed", "zstd header of %s", name)
		}
		return &compReader{r: z, closer: func() error { z.Close(); return nil }, fp: f}, nil
	case n == 0:
		return &compReader{r: f, fp: f}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		//some file systems can't be mapped, we just read them.
		return &compReader{r: f, fp: f}, nil
	}
	return &compReader{r: bytes.NewReader(m), fp: f, mapped: m}, nil
}
