package item

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giveme-app/giveme-api/internal/models"
)

type fakeUploader struct {
	mu      sync.Mutex
	uploads []string
	deletes []string
	failAt  int // 1-based upload index that fails; 0 never fails
}

func (f *fakeUploader) UploadPhoto(ctx context.Context, fileHeader *multipart.FileHeader) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, fileHeader.Filename)
	if f.failAt > 0 && len(f.uploads) == f.failAt {
		return "", "", errors.New("upload rejected")
	}
	publicID := fmt.Sprintf("pub-%d", len(f.uploads))
	return "https://cdn.example.com/" + fileHeader.Filename, publicID, nil
}

func (f *fakeUploader) DeletePhoto(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, publicID)
	return nil
}

func headers(names ...string) []*multipart.FileHeader {
	files := make([]*multipart.FileHeader, len(names))
	for i, name := range names {
		files[i] = &multipart.FileHeader{Filename: name}
	}
	return files
}

func TestUploadAllPreservesFormOrder(t *testing.T) {
	uploader := &fakeUploader{}

	uploaded, err := uploadAll(context.Background(), uploader, headers("a.jpg", "b.jpg", "c.jpg"))
	require.NoError(t, err)
	require.Len(t, uploaded, 3)

	assert.Equal(t, []string{"a.jpg", "b.jpg", "c.jpg"}, uploader.uploads)
	assert.Equal(t, "https://cdn.example.com/a.jpg", uploaded[0].url)
	assert.Equal(t, "pub-1", uploaded[0].publicID)
	assert.Empty(t, uploader.deletes)
}

func TestUploadAllCleansUpOnFailure(t *testing.T) {
	uploader := &fakeUploader{failAt: 3}

	uploaded, err := uploadAll(context.Background(), uploader, headers("a.jpg", "b.jpg", "c.jpg"))
	require.Error(t, err)
	assert.Nil(t, uploaded)

	// The two photos stored before the failure must be removed
	assert.Equal(t, []string{"pub-1", "pub-2"}, uploader.deletes)
}

func TestUploadAllEmptyForm(t *testing.T) {
	uploader := &fakeUploader{}

	uploaded, err := uploadAll(context.Background(), uploader, nil)
	require.NoError(t, err)
	assert.Empty(t, uploaded)
	assert.Empty(t, uploader.uploads)
}

func TestNormalizeType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"sell", models.TypeSell},
		{"Venda", models.TypeSell},
		{"donation", models.TypeDonation},
		{"doação", models.TypeDonation},
		{"doacao", models.TypeDonation},
		{"TROCA", models.TypeTrade},
		{"Trade", models.TypeTrade},
		{" Sell ", models.TypeSell},
		{"gift", "gift"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, normalizeType(tc.in), "input %q", tc.in)
	}
}
