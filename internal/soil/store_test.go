package soil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/config"
	"github.com/SatishkumarPallapu/ai-rythu-mitra/internal/infra"
)

func TestS3StorePresignsPathStyleURL(t *testing.T) {
	client, err := infra.NewS3Client(context.Background(), config.S3Config{
		Bucket:    "soil",
		Region:    "ap-south-1",
		Endpoint:  "http://localhost:9000",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	url, err := NewS3Store(client, "soil").PresignGet(context.Background(), "soil-reports/u1/r1.pdf", DownloadURLTTL)
	require.NoError(t, err)
	require.Contains(t, url, "http://localhost:9000/soil/soil-reports/u1/r1.pdf")
	require.Contains(t, url, "X-Amz-Expires=900")
}
