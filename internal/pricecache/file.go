package pricecache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	inErrors "github.com/Alturino/storefront/internal/errors"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/product/pkg/response"
)

// FileStore keeps the snapshot as a JSON array in one file. Writes go to a
// temporary file in the same directory which is then renamed over the target.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Save(c context.Context, products []response.Product) (err error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FileStore Save").
		Str(log.KeyFilePath, f.path).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "writing temporary file").Logger()
	logger.Trace().Msg("writing temporary file")
	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed creating temporary file with error=%w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if products == nil {
		products = []response.Product{}
	}
	if err = json.NewEncoder(tmp).Encode(products); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed encoding products with error=%w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed syncing temporary file with error=%w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed closing temporary file with error=%w", err)
	}
	logger.Trace().Msg("wrote temporary file")

	logger = logger.With().Str(log.KeyProcess, "renaming temporary file").Logger()
	if err = os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed renaming temporary file with error=%w", err)
	}
	logger.Info().Msg("saved products file")
	return nil
}

func (f *FileStore) Load(c context.Context) ([]response.Product, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "FileStore Load").
		Str(log.KeyFilePath, f.path).
		Logger()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Info().Msg("products file does not exist")
		return nil, inErrors.ErrPriceCacheMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed reading products file with error=%w", err)
	}

	products := []response.Product{}
	if err := json.Unmarshal(b, &products); err != nil {
		return nil, fmt.Errorf("failed decoding products file with error=%w", err)
	}
	logger.Trace().Int(log.KeyProductCount, len(products)).Msg("loaded products file")
	return products, nil
}
