package media

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploadAPI struct {
	uploadParams  uploader.UploadParams
	destroyed     []string
	uploadResult  *uploader.UploadResult
	destroyResult *uploader.DestroyResult
	err           error
}

func (f *fakeUploadAPI) Upload(_ context.Context, _ interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.uploadParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.uploadResult, nil
}

func (f *fakeUploadAPI) Destroy(_ context.Context, params uploader.DestroyParams) (*uploader.DestroyResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.destroyed = append(f.destroyed, params.PublicID)
	return f.destroyResult, nil
}

func TestUpload(t *testing.T) {
	fake := &fakeUploadAPI{uploadResult: &uploader.UploadResult{
		SecureURL: "https://res.cloudinary.com/x/image/upload/products/a.png",
		PublicID:  "products/a",
	}}
	s := &CloudinaryStore{api: fake}

	img, err := s.Upload(context.Background(), "a.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "products/a", img.PublicID)
	assert.Equal(t, "products", fake.uploadParams.Folder)
}

func TestUpload_ProviderError(t *testing.T) {
	fake := &fakeUploadAPI{uploadResult: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}
	s := &CloudinaryStore{api: fake}

	_, err := s.Upload(context.Background(), "a.txt", strings.NewReader("txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid image file")
}

func TestDelete(t *testing.T) {
	fake := &fakeUploadAPI{destroyResult: &uploader.DestroyResult{Result: "ok"}}
	s := &CloudinaryStore{api: fake}

	require.NoError(t, s.Delete(context.Background(), "products/a"))
	assert.Equal(t, []string{"products/a"}, fake.destroyed)

	fake.err = errors.New("timeout")
	assert.Error(t, s.Delete(context.Background(), "products/b"))
}

func TestUnconfigured(t *testing.T) {
	s, err := NewCloudinaryStore("", "", "", nil)
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "a.png", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, s.Delete(context.Background(), "x"), ErrNotConfigured)
}
