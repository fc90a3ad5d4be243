package minio

import (
	"bytes"
	"context"
	"net/url"
	"path"

	"github.com/DRSN-tech/pocopan-pos/internal/cfg"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/google/uuid"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
)

// ExportsPrefix — каталог выгрузок в бакете, на него действует правило хранения.
const ExportsPrefix = "exports"

// ReportRepo хранит выгрузки журнала в бакете MinIO.
type ReportRepo struct {
	mc  *minio.Client
	cfg *cfg.MinIOCfg
}

func NewReportRepo(mc *minio.Client, cfg *cfg.MinIOCfg) *ReportRepo {
	return &ReportRepo{
		mc:  mc,
		cfg: cfg,
	}
}

// Upload кладёт файл под ключом exports/<uuid>/<имя>, чтобы одноимённые выгрузки не перезаписывали друг друга.
func (r *ReportRepo) Upload(ctx context.Context, report *usecase.Report) (string, error) {
	key := path.Join(ExportsPrefix, uuid.NewString(), report.Name)

	info, err := r.mc.PutObject(ctx, r.cfg.BucketName, key, bytes.NewReader(report.Data), int64(len(report.Data)), minio.PutObjectOptions{
		ContentType: report.ContentType,
	})
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return info.Key, nil
}

// PresignedURL выдаёт ссылку на скачивание, живущую ExportURLTTL.
func (r *ReportRepo) PresignedURL(ctx context.Context, key string) (string, error) {
	params := url.Values{}
	params.Set("response-content-disposition", `attachment; filename="`+path.Base(key)+`"`)

	u, err := r.mc.PresignedGetObject(ctx, r.cfg.BucketName, key, r.cfg.ExportURLTTL, params)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), err)
	}

	return u.String(), nil
}
