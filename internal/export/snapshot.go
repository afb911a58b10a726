package export

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// Array names inside a snapshot. np.load exposes them without the suffix.
const (
	TimestepsArray = "timesteps"
	GridsArray     = "grids"
)

var (
	ErrMissingArray     = errors.New("export: snapshot is missing an array")
	ErrUnsupportedArray = errors.New("export: unsupported array layout")
	ErrMalformedArray   = errors.New("export: malformed array")
)

// WriteSnapshot writes s as a deflate-compressed .npz archive holding
// timesteps (T,) and grids (T, H, W), both int64.
func WriteSnapshot(w io.Writer, s *gridlog.Series) error {
	if err := s.Validate(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})

	t, h, wd := s.Shape()
	if err := writeEntry(zw, TimestepsArray, []int{t}, s.Timesteps); err != nil {
		zw.Close()
		return err
	}
	if err := writeEntry(zw, GridsArray, []int{t, h, wd}, s.Data); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

func writeEntry(zw *zip.Writer, name string, shape []int, data []int64) error {
	f, err := zw.CreateHeader(&zip.FileHeader{Name: name + ".npy", Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := writeNpy(f, shape, data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// SaveSnapshot writes the snapshot to path, replacing any existing file.
func SaveSnapshot(path string, s *gridlog.Series) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteSnapshot(file, s); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadSnapshot loads a snapshot from an archive of the given size.
func ReadSnapshot(r io.ReaderAt, size int64) (*gridlog.Series, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return readArchive(zr)
}

// LoadSnapshot loads a snapshot written by SaveSnapshot or numpy.savez_compressed.
func LoadSnapshot(path string) (*gridlog.Series, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return readArchive(&rc.Reader)
}

func readArchive(zr *zip.Reader) (*gridlog.Series, error) {
	var ts, grids *npyArray
	for _, f := range zr.File {
		var dst **npyArray
		switch f.Name {
		case TimestepsArray + ".npy":
			dst = &ts
		case GridsArray + ".npy":
			dst = &grids
		default:
			continue
		}
		arr, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		*dst = &arr
	}

	if ts == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingArray, TimestepsArray)
	}
	if grids == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingArray, GridsArray)
	}
	if len(ts.shape) != 1 || len(grids.shape) != 3 || grids.shape[0] != ts.shape[0] {
		return nil, fmt.Errorf("%w: timesteps %v, grids %v", gridlog.ErrShapeMismatch, ts.shape, grids.shape)
	}
	if ts.shape[0] == 0 {
		return nil, fmt.Errorf("%w: snapshot has no timesteps", gridlog.ErrEmptySeries)
	}
	return gridlog.NewSeries(ts.data, grids.shape[1], grids.shape[2], grids.data)
}

func readEntry(f *zip.File) (npyArray, error) {
	rc, err := f.Open()
	if err != nil {
		return npyArray{}, err
	}
	defer rc.Close()

	if f.UncompressedSize64 > math.MaxInt64 {
		return npyArray{}, fmt.Errorf("%w: entry too large", ErrMalformedArray)
	}
	return readNpy(rc, int64(f.UncompressedSize64))
}
